package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hkloans/loantrack/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestTransactionsWorkbook(t *testing.T) {
	txs := []*models.Transaction{
		{
			ID:          uuid.New(),
			UserID:      uuid.New(),
			Type:        models.TransactionTypeIn,
			Description: "Installment 1 payment - John",
			Amount:      decimal.RequireFromString("400"),
			Category:    "Payment Installment",
			Date:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:          uuid.New(),
			UserID:      uuid.New(),
			Type:        models.TransactionTypeOut,
			Description: "Loan to John",
			Amount:      decimal.RequireFromString("1000"),
			Category:    "Loan",
			Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	f, err := TransactionsWorkbook(txs)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"Date", "Type", "Category", "Description", "Amount"}, rows[0])
	require.Equal(t, "2024-02-01", rows[1][0])
	require.Equal(t, "IN", rows[1][1])
	require.Equal(t, "Loan to John", rows[2][3])
}

func TestTransactionsWorkbookEmpty(t *testing.T) {
	f, err := TransactionsWorkbook(nil)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
