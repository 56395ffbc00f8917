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

// RenegotiateLoanInput carries the terms of a successor loan. EntryAmount is
// an optional prepayment made at renegotiation time.
type RenegotiateLoanInput struct {
	NewTotalAmount      decimal.Decimal
	NewInstallmentCount int
	NewStartDate        time.Time
	EntryAmount         decimal.Decimal
}

// RenegotiateLoan closes an active loan and opens a successor seeded from its
// outstanding balance minus the entry payment.
//
// The old loan's installments remain as frozen history; only its status
// changes, which removes them from outstanding-debt aggregation. The
// successor's principal is the outstanding pending total minus the entry, its
// schedule is generated like a fresh loan's, but no disbursement or
// commission is recorded; only the entry payment, when positive, produces an
// IN ledger entry. All steps are one atomic unit.
func (s *Service) RenegotiateLoan(ctx context.Context, userID, loanID uuid.UUID, input RenegotiateLoanInput) (*LoanDetail, error) {
	if input.NewTotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("new total amount must be positive: %w", models.ErrValidation)
	}
	if input.NewInstallmentCount < 1 {
		return nil, fmt.Errorf("new installment count must be at least 1: %w", models.ErrValidation)
	}
	if input.EntryAmount.IsNegative() {
		return nil, fmt.Errorf("entry amount cannot be negative: %w", models.ErrValidation)
	}

	loan, client, err := loanOwned(ctx, s.store, userID, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusActive {
		return nil, fmt.Errorf("loan is not active: %w", models.ErrConflict)
	}

	installments, err := s.store.ListInstallmentsByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	outstanding := decimal.Zero
	for _, installment := range installments {
		if installment.Status == models.InstallmentStatusPending {
			outstanding = outstanding.Add(installment.Amount)
		}
	}
	if input.EntryAmount.GreaterThan(outstanding) {
		return nil, fmt.Errorf("entry amount %s exceeds outstanding debt %s: %w",
			input.EntryAmount, outstanding, models.ErrValidation)
	}

	now := time.Now()
	successor := &models.Loan{
		ID:             uuid.New(),
		ClientID:       loan.ClientID,
		OriginalLoanID: &loan.ID,
		Amount:         outstanding.Sub(input.EntryAmount),
		TotalAmount:    input.NewTotalAmount,
		InterestRate:   decimal.Zero,
		StartDate:      input.NewStartDate,
		Status:         models.LoanStatusActive,
		CreatedAt:      now,
	}
	schedule := buildSchedule(successor.ID, input.NewTotalAmount, input.NewInstallmentCount, input.NewStartDate)

	err = s.store.Tx(ctx, func(st store.Storage) error {
		loan.Status = models.LoanStatusRenegotiated
		if err := st.UpdateLoan(ctx, loan); err != nil {
			return err
		}
		if err := st.CreateLoan(ctx, successor); err != nil {
			return err
		}
		for _, installment := range schedule {
			if err := st.CreateInstallment(ctx, installment); err != nil {
				return err
			}
		}
		if input.EntryAmount.GreaterThan(decimal.Zero) {
			return recordEntry(ctx, st, userID, models.TransactionTypeIn,
				fmt.Sprintf("Renegotiation entry - %s", client.Name),
				input.EntryAmount, CategoryRenegotiation, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &LoanDetail{Loan: successor, Client: client, Installments: schedule}, nil
}
