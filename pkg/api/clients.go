package api

import (
	"encoding/json"
	"net/http"

	"github.com/hkloans/loantrack/pkg/lending"
)

type clientRequest struct {
	Name        string  `json:"name"`
	Whatsapp    *string `json:"whatsapp"`
	CPF         *string `json:"cpf"`
	RG          *string `json:"rg"`
	Address     *string `json:"address"`
	MotherName  *string `json:"mother_name"`
	Pix         *string `json:"pix"`
	Bank        *string `json:"bank"`
	Observation *string `json:"observation"`
	Rating      *int    `json:"rating"`
}

func (req clientRequest) toInput() lending.ClientInput {
	return lending.ClientInput{
		Name:        req.Name,
		Whatsapp:    req.Whatsapp,
		CPF:         req.CPF,
		RG:          req.RG,
		Address:     req.Address,
		MotherName:  req.MotherName,
		Pix:         req.Pix,
		Bank:        req.Bank,
		Observation: req.Observation,
		Rating:      req.Rating,
	}
}

func (s *Server) listClientsHandler(w http.ResponseWriter, r *http.Request) {
	clients, err := s.svc.ListClients(r.Context(), s.userFrom(r).ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, clients)
}

func (s *Server) createClientHandler(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := s.svc.CreateClient(r.Context(), s.userFrom(r).ID, req.toInput())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, client)
}

func (s *Server) updateClientHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid client id")
		return
	}
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := s.svc.UpdateClient(r.Context(), s.userFrom(r).ID, id, req.toInput())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, client)
}

func (s *Server) deleteClientHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid client id")
		return
	}
	if err := s.svc.DeleteClient(r.Context(), s.userFrom(r).ID, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clientStatsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid client id")
		return
	}
	stats, err := s.svc.GetClientStats(r.Context(), s.userFrom(r).ID, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}
