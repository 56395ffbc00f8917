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

type PaymentType string

const (
	// PaymentTypeFull settles the installment in full.
	PaymentTypeFull PaymentType = "FULL"
	// PaymentTypeInterestOnly records only the accrued interest and rolls the
	// principal forward into a new installment.
	PaymentTypeInterestOnly PaymentType = "INTEREST_ONLY"
)

// PayInstallmentInput carries a payment against one installment. PaymentDate
// defaults to now; NextDueDate (interest-only payments) defaults to one month
// after the current due date.
type PayInstallmentInput struct {
	Amount      decimal.Decimal
	Type        PaymentType
	PaymentDate *time.Time
	NextDueDate *time.Time
}

// PayInstallment applies a payment to a pending installment.
//
// A FULL payment marks it PAID. An INTEREST_ONLY payment marks it
// INTEREST_PAID and appends a successor installment carrying the same amount,
// numbered after the loan's highest existing number. Either way exactly one
// IN ledger entry is written, and all writes commit atomically.
func (s *Service) PayInstallment(ctx context.Context, userID, installmentID uuid.UUID, input PayInstallmentInput) error {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("payment amount must be positive: %w", models.ErrValidation)
	}
	if input.Type != PaymentTypeFull && input.Type != PaymentTypeInterestOnly {
		return fmt.Errorf("unknown payment type %q: %w", input.Type, models.ErrValidation)
	}

	installment, _, client, err := installmentOwned(ctx, s.store, userID, installmentID)
	if err != nil {
		return err
	}
	if installment.Status != models.InstallmentStatusPending {
		return fmt.Errorf("installment %d is already settled: %w", installment.Number, models.ErrConflict)
	}

	paidDate := time.Now()
	if input.PaymentDate != nil {
		paidDate = *input.PaymentDate
	}

	status := models.InstallmentStatusPaid
	category := CategoryInstallment
	description := fmt.Sprintf("Installment %d payment - %s", installment.Number, client.Name)

	return s.store.Tx(ctx, func(st store.Storage) error {
		if input.Type == PaymentTypeInterestOnly {
			status = models.InstallmentStatusInterestPaid
			category = CategoryInterest
			description += " (interest only)"

			installments, err := st.ListInstallmentsByLoan(ctx, installment.LoanID)
			if err != nil {
				return err
			}
			nextNumber := installment.Number
			for _, other := range installments {
				if other.Number > nextNumber {
					nextNumber = other.Number
				}
			}

			nextDue := addMonths(installment.DueDate, 1)
			if input.NextDueDate != nil {
				nextDue = *input.NextDueDate
			}

			// Principal carries forward unchanged.
			successor := &models.Installment{
				ID:      uuid.New(),
				LoanID:  installment.LoanID,
				Number:  nextNumber + 1,
				Amount:  installment.Amount,
				DueDate: nextDue,
				Status:  models.InstallmentStatusPending,
			}
			if err := st.CreateInstallment(ctx, successor); err != nil {
				return err
			}
		}

		installment.Status = status
		installment.PaidAmount = decimal.NewNullDecimal(input.Amount)
		installment.PaidDate = &paidDate
		if err := st.UpdateInstallment(ctx, installment); err != nil {
			return err
		}

		return recordEntry(ctx, st, userID, models.TransactionTypeIn,
			description, input.Amount, category, paidDate)
	})
}
