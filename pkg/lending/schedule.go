package lending

import (
	"time"

	"github.com/google/uuid"
	"github.com/hkloans/loantrack/pkg/models"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// buildSchedule produces count equal-value pending installments for a loan,
// numbered 1..count, the first due one month after start. The total is split
// by plain division; the fractional-cent remainder on the last installment is
// accepted, not redistributed.
func buildSchedule(loanID uuid.UUID, total decimal.Decimal, count int, start time.Time) []*models.Installment {
	value := total.Div(decimal.NewFromInt(int64(count)))
	installments := make([]*models.Installment, 0, count)
	for i := 1; i <= count; i++ {
		installments = append(installments, &models.Installment{
			ID:      uuid.New(),
			LoanID:  loanID,
			Number:  i,
			Amount:  value,
			DueDate: addMonths(start, i),
			Status:  models.InstallmentStatusPending,
		})
	}
	return installments
}

// deriveInterestRate computes the contracted rate in percent from the spread
// between total payable and principal, or zero for a non-positive principal.
func deriveInterestRate(principal, total decimal.Decimal) decimal.Decimal {
	if principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return total.Sub(principal).Div(principal).Mul(oneHundred)
}
