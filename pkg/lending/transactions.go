package lending

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hkloans/loantrack/pkg/models"
	"github.com/shopspring/decimal"
)

// TransactionInput carries a manual cash-flow entry. Date defaults to now.
type TransactionInput struct {
	Type        models.TransactionType
	Description string
	Amount      decimal.Decimal
	Category    string
	Date        *time.Time
}

// RecordTransaction appends a manual entry to the user's ledger.
func (s *Service) RecordTransaction(ctx context.Context, userID uuid.UUID, input TransactionInput) (*models.Transaction, error) {
	if input.Type != models.TransactionTypeIn && input.Type != models.TransactionTypeOut {
		return nil, fmt.Errorf("unknown transaction type %q: %w", input.Type, models.ErrValidation)
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("transaction amount must be positive: %w", models.ErrValidation)
	}
	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}
	entry := &models.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        input.Type,
		Description: input.Description,
		Amount:      input.Amount,
		Category:    input.Category,
		Date:        date,
	}
	if err := s.store.CreateTransaction(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListTransactions returns the user's ledger, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	return s.store.ListTransactionsByUser(ctx, userID)
}

// DeleteTransaction removes one ledger entry owned by the user. Entries are
// never edited in place.
func (s *Service) DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error {
	transaction, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return err
	}
	if transaction.UserID != userID {
		return fmt.Errorf("transaction %s: %w", transactionID, models.ErrNotFound)
	}
	return s.store.DeleteTransaction(ctx, transactionID)
}
