package api

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hkloans/loantrack/pkg/models"
	"github.com/hkloans/loantrack/pkg/store"
)

type contextKey string

const userContextKey contextKey = "user"

// authMiddleware resolves the bearer token to a user and stores it on the
// request context. Tokens are compared by sha256 hash, never stored raw.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeErrorMessage(w, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}

		user, err := s.store.GetUserByTokenHash(r.Context(), hashToken(token))
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				s.writeErrorMessage(w, http.StatusUnauthorized, "invalid token")
				return
			}
			s.writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) userFrom(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

type registerRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

type registerResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	if req.Username == "" || req.Name == "" {
		s.writeErrorMessage(w, http.StatusBadRequest, "username and name are required")
		return
	}

	token, err := generateToken()
	if err != nil {
		s.writeError(w, err)
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.New(),
		Username:  req.Username,
		Name:      req.Name,
		CreatedAt: now,
	}
	err = s.store.Tx(r.Context(), func(tx store.Storage) error {
		if err := tx.CreateUser(r.Context(), user); err != nil {
			return err
		}
		return tx.CreateAPIToken(r.Context(), &models.APIToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			TokenHash: hashToken(token),
			CreatedAt: now,
		})
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, registerResponse{User: user, Token: token})
}
