package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hkloans/loantrack/pkg/models"
)

const dateLayout = "2006-01-02"

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("api: encoding response: %v", err)
		}
	}
}

func (s *Server) writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps domain errors onto HTTP statuses. Anything unrecognized is
// logged and reported as a 500 without leaking internals.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		s.writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrForbidden):
		s.writeErrorMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrNotFound):
		s.writeErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrConflict):
		s.writeErrorMessage(w, http.StatusConflict, err.Error())
	default:
		log.Printf("api: internal error: %v", err)
		s.writeErrorMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathID extracts and parses the {id} route variable.
func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["id"])
}

func parseDate(v string) (time.Time, error) {
	return time.Parse(dateLayout, v)
}

func parseOptionalDate(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := parseDate(*v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
