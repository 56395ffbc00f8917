package lending

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hkloans/loantrack/pkg/models"
	"github.com/stretchr/testify/require"
)

// seedLoan creates the canonical test loan: 1000 principal, 1200 total,
// three installments of 400 starting 2024-01-01.
func seedLoan(t *testing.T, svc *Service, userID, clientID uuid.UUID) *LoanDetail {
	t.Helper()
	loan, err := svc.CreateLoan(context.Background(), userID, CreateLoanInput{
		ClientID:         clientID,
		Principal:        dec("1000"),
		TotalAmount:      dec("1200"),
		InstallmentCount: 3,
		StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return loan
}

func TestPayInstallmentFull(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")
	client := seedClient(t, st, user.ID, "John")
	loan := seedLoan(t, svc, user.ID, client.ID)
	target := loan.Installments[0]

	payDate := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	err := svc.PayInstallment(ctx, user.ID, target.ID, PayInstallmentInput{
		Amount:      dec("400"),
		Type:        PaymentTypeFull,
		PaymentDate: &payDate,
	})
	require.NoError(t, err)

	got, err := st.GetInstallment(ctx, target.ID)
	require.NoError(t, err)
	require.Equal(t, models.InstallmentStatusPaid, got.Status)
	require.True(t, got.PaidAmount.Valid)
	require.True(t, got.PaidAmount.Decimal.Equal(dec("400")))
	require.NotNil(t, got.PaidDate)
	require.True(t, got.PaidDate.Equal(payDate))

	txs, err := st.ListTransactionsByUser(ctx, user.ID)
	require.NoError(t, err)
	var entry *models.Transaction
	for _, tx := range txs {
		if tx.Category == CategoryInstallment {
			entry = tx
		}
	}
	require.NotNil(t, entry)
	require.Equal(t, models.TransactionTypeIn, entry.Type)
	require.Equal(t, "Installment 1 payment - John", entry.Description)
	require.True(t, entry.Amount.Equal(dec("400")))
}

func TestPayInstallmentInterestOnlyRollsOver(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")
	client := seedClient(t, st, user.ID, "John")
	loan := seedLoan(t, svc, user.ID, client.ID)
	target := loan.Installments[0]

	err := svc.PayInstallment(ctx, user.ID, target.ID, PayInstallmentInput{
		Amount: dec("100"),
		Type:   PaymentTypeInterestOnly,
	})
	require.NoError(t, err)

	got, err := st.GetInstallment(ctx, target.ID)
	require.NoError(t, err)
	require.Equal(t, models.InstallmentStatusInterestPaid, got.Status)
	require.True(t, got.PaidAmount.Decimal.Equal(dec("100")))

	installments, err := st.ListInstallmentsByLoan(ctx, loan.ID)
	require.NoError(t, err)
	require.Len(t, installments, 4)

	successor := installments[len(installments)-1]
	require.Equal(t, 4, successor.Number)
	require.True(t, successor.Amount.Equal(target.Amount))
	require.Equal(t, models.InstallmentStatusPending, successor.Status)
	// Rolled due date is one month past the settled installment's.
	require.Equal(t, addMonths(target.DueDate, 1), successor.DueDate)

	txs, err := st.ListTransactionsByUser(ctx, user.ID)
	require.NoError(t, err)
	var entry *models.Transaction
	for _, tx := range txs {
		if tx.Category == CategoryInterest {
			entry = tx
		}
	}
	require.NotNil(t, entry)
	require.Equal(t, "Installment 1 payment - John (interest only)", entry.Description)
}

func TestPayInstallmentInterestOnlyCustomNextDue(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")
	client := seedClient(t, st, user.ID, "John")
	loan := seedLoan(t, svc, user.ID, client.ID)

	nextDue := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	err := svc.PayInstallment(ctx, user.ID, loan.Installments[0].ID, PayInstallmentInput{
		Amount:      dec("100"),
		Type:        PaymentTypeInterestOnly,
		NextDueDate: &nextDue,
	})
	require.NoError(t, err)

	installments, err := st.ListInstallmentsByLoan(ctx, loan.ID)
	require.NoError(t, err)
	require.Equal(t, nextDue, installments[len(installments)-1].DueDate)
}

func TestPayInstallmentAlreadySettled(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")
	client := seedClient(t, st, user.ID, "John")
	loan := seedLoan(t, svc, user.ID, client.ID)
	target := loan.Installments[0]

	input := PayInstallmentInput{Amount: dec("400"), Type: PaymentTypeFull}
	require.NoError(t, svc.PayInstallment(ctx, user.ID, target.ID, input))
	require.ErrorIs(t, svc.PayInstallment(ctx, user.ID, target.ID, input), models.ErrConflict)
}

func TestPayInstallmentValidation(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")
	client := seedClient(t, st, user.ID, "John")
	loan := seedLoan(t, svc, user.ID, client.ID)
	target := loan.Installments[0]

	err := svc.PayInstallment(ctx, user.ID, target.ID, PayInstallmentInput{Amount: dec("0"), Type: PaymentTypeFull})
	require.ErrorIs(t, err, models.ErrValidation)

	err = svc.PayInstallment(ctx, user.ID, target.ID, PayInstallmentInput{Amount: dec("400"), Type: "PARTIAL"})
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestPayInstallmentForeignForbidden(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "alice")
	intruder := seedUser(t, st, "mallory")
	client := seedClient(t, st, owner.ID, "John")
	loan := seedLoan(t, svc, owner.ID, client.ID)

	err := svc.PayInstallment(ctx, intruder.ID, loan.Installments[0].ID, PayInstallmentInput{
		Amount: dec("400"),
		Type:   PaymentTypeFull,
	})
	require.ErrorIs(t, err, models.ErrForbidden)
}
