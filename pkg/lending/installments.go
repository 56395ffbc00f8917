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

// DuplicateInstallment clones a pending installment into a new pending one
// due a month later, numbered after the loan's highest existing number, and
// grows the loan's total by the duplicated amount. Both writes are atomic.
func (s *Service) DuplicateInstallment(ctx context.Context, userID, installmentID uuid.UUID) (*models.Installment, error) {
	installment, loan, _, err := installmentOwned(ctx, s.store, userID, installmentID)
	if err != nil {
		return nil, err
	}
	if installment.Status != models.InstallmentStatusPending {
		return nil, fmt.Errorf("installment %d is not pending: %w", installment.Number, models.ErrConflict)
	}

	var duplicate *models.Installment
	err = s.store.Tx(ctx, func(st store.Storage) error {
		installments, err := st.ListInstallmentsByLoan(ctx, loan.ID)
		if err != nil {
			return err
		}
		nextNumber := installment.Number
		for _, other := range installments {
			if other.Number > nextNumber {
				nextNumber = other.Number
			}
		}

		duplicate = &models.Installment{
			ID:      uuid.New(),
			LoanID:  loan.ID,
			Number:  nextNumber + 1,
			Amount:  installment.Amount,
			DueDate: addMonths(installment.DueDate, 1),
			Status:  models.InstallmentStatusPending,
		}
		if err := st.CreateInstallment(ctx, duplicate); err != nil {
			return err
		}

		loan.TotalAmount = loan.TotalAmount.Add(installment.Amount)
		return st.UpdateLoan(ctx, loan)
	})
	if err != nil {
		return nil, err
	}
	return duplicate, nil
}

// EditInstallmentInput lists the fields a manual correction may set. Nil
// fields are left unchanged. No cross-field recomputation happens: changing
// the amount does not touch the parent loan's total.
type EditInstallmentInput struct {
	Status     *models.InstallmentStatus
	Amount     *decimal.Decimal
	DueDate    *time.Time
	PaidAmount *decimal.Decimal
	PaidDate   *time.Time
}

// EditInstallment applies a manual correction to one installment. It is the
// only way to amend a settled installment.
func (s *Service) EditInstallment(ctx context.Context, userID, installmentID uuid.UUID, input EditInstallmentInput) (*models.Installment, error) {
	installment, _, _, err := installmentOwned(ctx, s.store, userID, installmentID)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		switch *input.Status {
		case models.InstallmentStatusPending, models.InstallmentStatusPaid, models.InstallmentStatusInterestPaid:
			installment.Status = *input.Status
		default:
			return nil, fmt.Errorf("unknown installment status %q: %w", *input.Status, models.ErrValidation)
		}
	}
	if input.Amount != nil {
		installment.Amount = *input.Amount
	}
	if input.DueDate != nil {
		installment.DueDate = *input.DueDate
	}
	if input.PaidAmount != nil {
		installment.PaidAmount = decimal.NewNullDecimal(*input.PaidAmount)
	}
	if input.PaidDate != nil {
		installment.PaidDate = input.PaidDate
	}

	if err := s.store.UpdateInstallment(ctx, installment); err != nil {
		return nil, err
	}
	return installment, nil
}

// DeleteInstallment removes a single installment. The parent loan's total is
// deliberately left untouched; correcting it is the caller's responsibility.
func (s *Service) DeleteInstallment(ctx context.Context, userID, installmentID uuid.UUID) error {
	if _, _, _, err := installmentOwned(ctx, s.store, userID, installmentID); err != nil {
		return err
	}
	return s.store.DeleteInstallment(ctx, installmentID)
}
