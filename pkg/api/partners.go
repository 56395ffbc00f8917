package api

import (
	"encoding/json"
	"net/http"

	"github.com/hkloans/loantrack/pkg/lending"
	"github.com/shopspring/decimal"
)

type partnerRequest struct {
	Name           string          `json:"name"`
	PixKey         *string         `json:"pix_key"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
}

func (s *Server) listPartnersHandler(w http.ResponseWriter, r *http.Request) {
	partners, err := s.svc.ListPartners(r.Context(), s.userFrom(r).ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, partners)
}

func (s *Server) createPartnerHandler(w http.ResponseWriter, r *http.Request) {
	var req partnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	partner, err := s.svc.CreatePartner(r.Context(), s.userFrom(r).ID, lending.PartnerInput{
		Name:           req.Name,
		PixKey:         req.PixKey,
		CommissionRate: req.CommissionRate,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, partner)
}

func (s *Server) deletePartnerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid partner id")
		return
	}
	if err := s.svc.DeletePartner(r.Context(), s.userFrom(r).ID, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
