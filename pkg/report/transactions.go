// Package report renders ledger data into spreadsheet workbooks.
package report

import (
	"fmt"

	"github.com/hkloans/loantrack/pkg/models"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Transactions"

// TransactionsWorkbook builds an XLSX workbook listing the given ledger
// entries, one row each, newest first as provided. The caller owns the file
// and must Close it.
func TransactionsWorkbook(txs []*models.Transaction) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	headers := []string{"Date", "Type", "Category", "Description", "Amount"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}

	for row, tx := range txs {
		amount, _ := tx.Amount.Float64()
		values := []any{
			tx.Date.Format("2006-01-02"),
			string(tx.Type),
			tx.Category,
			tx.Description,
			amount,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}
