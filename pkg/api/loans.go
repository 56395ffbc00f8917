package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/hkloans/loantrack/pkg/lending"
	"github.com/shopspring/decimal"
)

type createLoanRequest struct {
	ClientID         string          `json:"client_id"`
	PartnerID        *string         `json:"partner_id"`
	Amount           decimal.Decimal `json:"amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	InstallmentCount int             `json:"installment_count"`
	StartDate        string          `json:"start_date"`
}

func (s *Server) listLoansHandler(w http.ResponseWriter, r *http.Request) {
	loans, err := s.svc.ListLoans(r.Context(), s.userFrom(r).ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, loans)
}

func (s *Server) createLoanHandler(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid client id")
		return
	}
	var partnerID *uuid.UUID
	if req.PartnerID != nil && *req.PartnerID != "" {
		id, err := uuid.Parse(*req.PartnerID)
		if err != nil {
			s.writeErrorMessage(w, http.StatusBadRequest, "invalid partner id")
			return
		}
		partnerID = &id
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid start date, want YYYY-MM-DD")
		return
	}

	loan, err := s.svc.CreateLoan(r.Context(), s.userFrom(r).ID, lending.CreateLoanInput{
		ClientID:         clientID,
		PartnerID:        partnerID,
		Principal:        req.Amount,
		TotalAmount:      req.TotalAmount,
		InstallmentCount: req.InstallmentCount,
		StartDate:        startDate,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, loan)
}

func (s *Server) deleteLoanHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid loan id")
		return
	}
	if err := s.svc.DeleteLoan(r.Context(), s.userFrom(r).ID, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type renegotiateLoanRequest struct {
	NewTotalAmount      decimal.Decimal `json:"new_total_amount"`
	NewInstallmentCount int             `json:"new_installment_count"`
	NewStartDate        string          `json:"new_start_date"`
	EntryAmount         decimal.Decimal `json:"entry_amount"`
}

func (s *Server) renegotiateLoanHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid loan id")
		return
	}
	var req renegotiateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	startDate, err := parseDate(req.NewStartDate)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid start date, want YYYY-MM-DD")
		return
	}

	loan, err := s.svc.RenegotiateLoan(r.Context(), s.userFrom(r).ID, id, lending.RenegotiateLoanInput{
		NewTotalAmount:      req.NewTotalAmount,
		NewInstallmentCount: req.NewInstallmentCount,
		NewStartDate:        startDate,
		EntryAmount:         req.EntryAmount,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, loan)
}
