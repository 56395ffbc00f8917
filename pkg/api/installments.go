package api

import (
	"encoding/json"
	"net/http"

	"github.com/hkloans/loantrack/pkg/lending"
	"github.com/hkloans/loantrack/pkg/models"
	"github.com/shopspring/decimal"
)

type payInstallmentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	PaymentDate *string         `json:"payment_date"`
	NextDueDate *string         `json:"next_due_date"`
}

func (s *Server) payInstallmentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid installment id")
		return
	}
	var req payInstallmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	paymentDate, err := parseOptionalDate(req.PaymentDate)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid payment date, want YYYY-MM-DD")
		return
	}
	nextDueDate, err := parseOptionalDate(req.NextDueDate)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid next due date, want YYYY-MM-DD")
		return
	}

	err = s.svc.PayInstallment(r.Context(), s.userFrom(r).ID, id, lending.PayInstallmentInput{
		Amount:      req.Amount,
		Type:        lending.PaymentType(req.Type),
		PaymentDate: paymentDate,
		NextDueDate: nextDueDate,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "paid"})
}

type editInstallmentRequest struct {
	Status     *string          `json:"status"`
	Amount     *decimal.Decimal `json:"amount"`
	DueDate    *string          `json:"due_date"`
	PaidAmount *decimal.Decimal `json:"paid_amount"`
	PaidDate   *string          `json:"paid_date"`
}

func (s *Server) editInstallmentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid installment id")
		return
	}
	var req editInstallmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid due date, want YYYY-MM-DD")
		return
	}
	paidDate, err := parseOptionalDate(req.PaidDate)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid paid date, want YYYY-MM-DD")
		return
	}
	var status *models.InstallmentStatus
	if req.Status != nil {
		st := models.InstallmentStatus(*req.Status)
		status = &st
	}

	installment, err := s.svc.EditInstallment(r.Context(), s.userFrom(r).ID, id, lending.EditInstallmentInput{
		Status:     status,
		Amount:     req.Amount,
		DueDate:    dueDate,
		PaidAmount: req.PaidAmount,
		PaidDate:   paidDate,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, installment)
}

func (s *Server) duplicateInstallmentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid installment id")
		return
	}
	installment, err := s.svc.DuplicateInstallment(r.Context(), s.userFrom(r).ID, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, installment)
}

func (s *Server) deleteInstallmentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid installment id")
		return
	}
	if err := s.svc.DeleteInstallment(r.Context(), s.userFrom(r).ID, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
