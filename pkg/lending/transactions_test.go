package lending

import (
	"context"
	"testing"
	"time"

	"github.com/hkloans/loantrack/pkg/models"
	"github.com/stretchr/testify/require"
)

func TestRecordTransaction(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tx, err := svc.RecordTransaction(ctx, user.ID, TransactionInput{
		Type:        models.TransactionTypeOut,
		Description: "Office rent",
		Amount:      dec("150"),
		Category:    "Expense",
		Date:        &date,
	})
	require.NoError(t, err)
	require.Equal(t, user.ID, tx.UserID)
	require.Equal(t, date, tx.Date)
	require.True(t, tx.Amount.Equal(dec("150")))
}

func TestRecordTransactionDefaultsDate(t *testing.T) {
	svc, st := testService(t)
	user := seedUser(t, st, "alice")

	tx, err := svc.RecordTransaction(context.Background(), user.ID, TransactionInput{
		Type:        models.TransactionTypeIn,
		Description: "Top up",
		Amount:      dec("10"),
		Category:    "Other",
	})
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), tx.Date, time.Minute)
}

func TestRecordTransactionValidation(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")

	_, err := svc.RecordTransaction(ctx, user.ID, TransactionInput{
		Type: "TRANSFER", Description: "x", Amount: dec("10"),
	})
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.RecordTransaction(ctx, user.ID, TransactionInput{
		Type: models.TransactionTypeIn, Description: "x", Amount: dec("0"),
	})
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestListTransactionsNewestFirst(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")

	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.RecordTransaction(ctx, user.ID, TransactionInput{
		Type: models.TransactionTypeIn, Description: "old", Amount: dec("1"), Date: &older,
	})
	require.NoError(t, err)
	_, err = svc.RecordTransaction(ctx, user.ID, TransactionInput{
		Type: models.TransactionTypeIn, Description: "new", Amount: dec("2"), Date: &newer,
	})
	require.NoError(t, err)

	txs, err := svc.ListTransactions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, "new", txs[0].Description)
	require.Equal(t, "old", txs[1].Description)
}

func TestDeleteTransactionForeignHidden(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "alice")
	intruder := seedUser(t, st, "mallory")

	tx, err := svc.RecordTransaction(ctx, owner.ID, TransactionInput{
		Type: models.TransactionTypeIn, Description: "x", Amount: dec("5"),
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteTransaction(ctx, intruder.ID, tx.ID), models.ErrNotFound)
	require.NoError(t, svc.DeleteTransaction(ctx, owner.ID, tx.ID))

	txs, err := svc.ListTransactions(ctx, owner.ID)
	require.NoError(t, err)
	require.Empty(t, txs)
}
