package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/hkloans/loantrack/pkg/lending"
	"github.com/hkloans/loantrack/pkg/models"
	"github.com/hkloans/loantrack/pkg/report"
	"github.com/shopspring/decimal"
)

type createTransactionRequest struct {
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        *string         `json:"date"`
}

func (s *Server) listTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.ListTransactions(r.Context(), s.userFrom(r).ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, txs)
}

func (s *Server) createTransactionHandler(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	tx, err := s.svc.RecordTransaction(r.Context(), s.userFrom(r).ID, lending.TransactionInput{
		Type:        models.TransactionType(req.Type),
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        date,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) deleteTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	if err := s.svc.DeleteTransaction(r.Context(), s.userFrom(r).ID, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.ListTransactions(r.Context(), s.userFrom(r).ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	wb, err := report.TransactionsWorkbook(txs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer wb.Close()

	filename := fmt.Sprintf("transactions-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := wb.Write(w); err != nil {
		log.Printf("api: writing workbook: %v", err)
	}
}
