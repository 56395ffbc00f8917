package lending

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hkloans/loantrack/pkg/models"
	"github.com/hkloans/loantrack/pkg/store"
	"github.com/shopspring/decimal"
)

// Ledger categories for the cash-flow entries the core records.
const (
	CategoryLoan          = "Loan"
	CategoryCommission    = "Commission"
	CategoryInstallment   = "Payment Installment"
	CategoryInterest      = "Interest"
	CategoryRenegotiation = "Renegotiation"
)

// Service implements the loan lifecycle: schedule generation, payments,
// installment mutation, renegotiation and reporting. Every state-changing
// operation runs inside one Storage.Tx so partial writes never commit.
type Service struct {
	store store.Storage
}

// NewService creates a new Service with a given Storage implementation.
func NewService(s store.Storage) *Service {
	return &Service{store: s}
}

// clientOwned loads a client and hides its existence from other users.
func clientOwned(ctx context.Context, st store.Storage, userID, clientID uuid.UUID) (*models.Client, error) {
	client, err := st.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client.UserID != userID {
		return nil, fmt.Errorf("client %s: %w", clientID, models.ErrNotFound)
	}
	return client, nil
}

// loanOwned loads a loan and verifies ownership through the loan→client→user
// chain.
func loanOwned(ctx context.Context, st store.Storage, userID, loanID uuid.UUID) (*models.Loan, *models.Client, error) {
	loan, err := st.GetLoan(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}
	client, err := st.GetClient(ctx, loan.ClientID)
	if err != nil {
		return nil, nil, err
	}
	if client.UserID != userID {
		return nil, nil, fmt.Errorf("loan %s: %w", loanID, models.ErrForbidden)
	}
	return loan, client, nil
}

// installmentOwned loads an installment and verifies ownership through the
// installment→loan→client→user chain.
func installmentOwned(ctx context.Context, st store.Storage, userID, installmentID uuid.UUID) (*models.Installment, *models.Loan, *models.Client, error) {
	installment, err := st.GetInstallment(ctx, installmentID)
	if err != nil {
		return nil, nil, nil, err
	}
	loan, err := st.GetLoan(ctx, installment.LoanID)
	if err != nil {
		return nil, nil, nil, err
	}
	client, err := st.GetClient(ctx, loan.ClientID)
	if err != nil {
		return nil, nil, nil, err
	}
	if client.UserID != userID {
		return nil, nil, nil, fmt.Errorf("installment %s: %w", installmentID, models.ErrForbidden)
	}
	return installment, loan, client, nil
}

// recordEntry appends one cash-flow ledger entry.
func recordEntry(ctx context.Context, st store.Storage, userID uuid.UUID, typ models.TransactionType,
	description string, amount decimal.Decimal, category string, date time.Time) error {
	entry := &models.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        typ,
		Description: description,
		Amount:      amount,
		Category:    category,
		Date:        date,
	}
	if err := st.CreateTransaction(ctx, entry); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}
	return nil
}

// addMonths advances t by n months, clamping to the last day of the target
// month (Jan 31 + 1 month = Feb 28/29).
func addMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hour, minute, second := t.Clock()
	first := time.Date(year, month+time.Month(n), 1, hour, minute, second, t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, minute, second, t.Nanosecond(), t.Location())
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
