package lending

import (
	"context"
	"testing"
	"time"

	"github.com/hkloans/loantrack/pkg/models"
	"github.com/stretchr/testify/require"
)

func TestRenegotiateLoan(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")
	client := seedClient(t, st, user.ID, "John")
	loan := seedLoan(t, svc, user.ID, client.ID)

	// Settle the first installment; 800 stays outstanding.
	require.NoError(t, svc.PayInstallment(ctx, user.ID, loan.Installments[0].ID, PayInstallmentInput{
		Amount: dec("400"),
		Type:   PaymentTypeFull,
	}))

	newStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	successor, err := svc.RenegotiateLoan(ctx, user.ID, loan.ID, RenegotiateLoanInput{
		NewTotalAmount:      dec("1000"),
		NewInstallmentCount: 2,
		NewStartDate:        newStart,
		EntryAmount:         dec("200"),
	})
	require.NoError(t, err)

	// Principal is the outstanding 800 minus the 200 entry.
	require.True(t, successor.Amount.Equal(dec("600")))
	require.True(t, successor.TotalAmount.Equal(dec("1000")))
	require.True(t, successor.InterestRate.IsZero())
	require.Equal(t, models.LoanStatusActive, successor.Status)
	require.NotNil(t, successor.OriginalLoanID)
	require.Equal(t, loan.ID, *successor.OriginalLoanID)
	require.Len(t, successor.Installments, 2)
	for _, installment := range successor.Installments {
		require.True(t, installment.Amount.Equal(dec("500")))
	}

	old, err := st.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	require.Equal(t, models.LoanStatusRenegotiated, old.Status)

	// Old installments survive as frozen history.
	oldInstallments, err := st.ListInstallmentsByLoan(ctx, loan.ID)
	require.NoError(t, err)
	require.Len(t, oldInstallments, 3)

	txs, err := st.ListTransactionsByUser(ctx, user.ID)
	require.NoError(t, err)
	var entry *models.Transaction
	for _, tx := range txs {
		if tx.Category == CategoryRenegotiation {
			entry = tx
		}
	}
	require.NotNil(t, entry)
	require.Equal(t, models.TransactionTypeIn, entry.Type)
	require.Equal(t, "Renegotiation entry - John", entry.Description)
	require.True(t, entry.Amount.Equal(dec("200")))
}

func TestRenegotiateLoanNoEntry(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")
	client := seedClient(t, st, user.ID, "John")
	loan := seedLoan(t, svc, user.ID, client.ID)

	successor, err := svc.RenegotiateLoan(ctx, user.ID, loan.ID, RenegotiateLoanInput{
		NewTotalAmount:      dec("1400"),
		NewInstallmentCount: 4,
		NewStartDate:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.True(t, successor.Amount.Equal(dec("1200")))

	txs, err := st.ListTransactionsByUser(ctx, user.ID)
	require.NoError(t, err)
	for _, tx := range txs {
		require.NotEqual(t, CategoryRenegotiation, tx.Category)
	}
}

func TestRenegotiateLoanEntryExceedsOutstanding(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")
	client := seedClient(t, st, user.ID, "John")
	loan := seedLoan(t, svc, user.ID, client.ID)

	_, err := svc.RenegotiateLoan(ctx, user.ID, loan.ID, RenegotiateLoanInput{
		NewTotalAmount:      dec("500"),
		NewInstallmentCount: 1,
		NewStartDate:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EntryAmount:         dec("1300"),
	})
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestRenegotiateLoanValidation(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")
	client := seedClient(t, st, user.ID, "John")
	loan := seedLoan(t, svc, user.ID, client.ID)
	newStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.RenegotiateLoan(ctx, user.ID, loan.ID, RenegotiateLoanInput{
		NewTotalAmount: dec("0"), NewInstallmentCount: 2, NewStartDate: newStart,
	})
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.RenegotiateLoan(ctx, user.ID, loan.ID, RenegotiateLoanInput{
		NewTotalAmount: dec("1000"), NewInstallmentCount: 0, NewStartDate: newStart,
	})
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.RenegotiateLoan(ctx, user.ID, loan.ID, RenegotiateLoanInput{
		NewTotalAmount: dec("1000"), NewInstallmentCount: 2, NewStartDate: newStart,
		EntryAmount: dec("-1"),
	})
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestRenegotiateLoanNotActive(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")
	client := seedClient(t, st, user.ID, "John")
	loan := seedLoan(t, svc, user.ID, client.ID)

	input := RenegotiateLoanInput{
		NewTotalAmount:      dec("1000"),
		NewInstallmentCount: 2,
		NewStartDate:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := svc.RenegotiateLoan(ctx, user.ID, loan.ID, input)
	require.NoError(t, err)

	// The old loan may only be renegotiated once.
	_, err = svc.RenegotiateLoan(ctx, user.ID, loan.ID, input)
	require.ErrorIs(t, err, models.ErrConflict)
}

func TestRenegotiateLoanForeignForbidden(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "alice")
	intruder := seedUser(t, st, "mallory")
	client := seedClient(t, st, owner.ID, "John")
	loan := seedLoan(t, svc, owner.ID, client.ID)

	_, err := svc.RenegotiateLoan(ctx, intruder.ID, loan.ID, RenegotiateLoanInput{
		NewTotalAmount:      dec("1000"),
		NewInstallmentCount: 2,
		NewStartDate:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, models.ErrForbidden)
}
