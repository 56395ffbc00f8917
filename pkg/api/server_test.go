package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hkloans/loantrack/pkg/lending"
	"github.com/hkloans/loantrack/pkg/store"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := store.NewMemoryStore()
	return NewServer("0", lending.NewService(st), st)
}

func doRequest(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, s *Server, username string) string {
	t.Helper()
	rec := doRequest(t, s, http.MethodPost, "/register", "", map[string]string{
		"username": username,
		"name":     username,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp registerResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterIssuesWorkingToken(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "alice")

	rec := doRequest(t, s, http.MethodGet, "/clients", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	s := newTestServer(t)
	register(t, s, "alice")

	rec := doRequest(t, s, http.MethodPost, "/register", "", map[string]string{
		"username": "alice",
		"name":     "Alice Again",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/clients", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/clients", "not-a-real-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClientLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "alice")

	rec := doRequest(t, s, http.MethodPost, "/clients", token, map[string]any{
		"name":     "John",
		"whatsapp": "+5511999",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var client struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Rating int    `json:"rating"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&client))
	require.Equal(t, "John", client.Name)
	require.Equal(t, 5, client.Rating)

	rec = doRequest(t, s, http.MethodPut, "/clients/"+client.ID, token, map[string]any{
		"name": "John Smith",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, s, http.MethodDelete, "/clients/"+client.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/clients", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]\n", rec.Body.String())
}

func TestClientValidationError(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "alice")

	rec := doRequest(t, s, http.MethodPost, "/clients", token, map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func createTestClient(t *testing.T, s *Server, token, name string) string {
	t.Helper()
	rec := doRequest(t, s, http.MethodPost, "/clients", token, map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var client struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&client))
	return client.ID
}

func createTestLoan(t *testing.T, s *Server, token, clientID string) (loanID string, installmentIDs []string) {
	t.Helper()
	rec := doRequest(t, s, http.MethodPost, "/loans", token, map[string]any{
		"client_id":         clientID,
		"amount":            "1000",
		"total_amount":      "1200",
		"installment_count": 3,
		"start_date":        "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var loan struct {
		ID           string `json:"id"`
		Installments []struct {
			ID string `json:"id"`
		} `json:"installments"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&loan))
	for _, installment := range loan.Installments {
		installmentIDs = append(installmentIDs, installment.ID)
	}
	return loan.ID, installmentIDs
}

func TestLoanFlow(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "alice")
	clientID := createTestClient(t, s, token, "John")
	_, installments := createTestLoan(t, s, token, clientID)
	require.Len(t, installments, 3)

	rec := doRequest(t, s, http.MethodPost, fmt.Sprintf("/installments/%s/pay", installments[0]), token, map[string]any{
		"amount": "400",
		"type":   "FULL",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Paying the same installment again conflicts.
	rec = doRequest(t, s, http.MethodPost, fmt.Sprintf("/installments/%s/pay", installments[0]), token, map[string]any{
		"amount": "400",
		"type":   "FULL",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/dashboard/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		TotalInvested string `json:"total_invested"`
		TotalReceived string `json:"total_received"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	require.Equal(t, "1000", summary.TotalInvested)
	require.Equal(t, "400", summary.TotalReceived)

	rec = doRequest(t, s, http.MethodGet, "/transactions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRenegotiateOverHTTP(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "alice")
	clientID := createTestClient(t, s, token, "John")
	loanID, _ := createTestLoan(t, s, token, clientID)

	rec := doRequest(t, s, http.MethodPost, fmt.Sprintf("/loans/%s/renegotiate", loanID), token, map[string]any{
		"new_total_amount":      "1000",
		"new_installment_count": 2,
		"new_start_date":        "2024-06-01",
		"entry_amount":          "200",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var successor struct {
		Amount         string  `json:"amount"`
		OriginalLoanID *string `json:"original_loan_id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&successor))
	require.Equal(t, "1000", successor.Amount)
	require.NotNil(t, successor.OriginalLoanID)
	require.Equal(t, loanID, *successor.OriginalLoanID)
}

func TestCrossTenantLoanForbidden(t *testing.T) {
	s := newTestServer(t)
	alice := register(t, s, "alice")
	mallory := register(t, s, "mallory")
	clientID := createTestClient(t, s, alice, "John")
	loanID, _ := createTestLoan(t, s, alice, clientID)

	rec := doRequest(t, s, http.MethodDelete, "/loans/"+loanID, mallory, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCrossTenantClientHidden(t *testing.T) {
	s := newTestServer(t)
	alice := register(t, s, "alice")
	mallory := register(t, s, "mallory")
	clientID := createTestClient(t, s, alice, "John")

	rec := doRequest(t, s, http.MethodDelete, "/clients/"+clientID, mallory, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownIDsRejected(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "alice")

	rec := doRequest(t, s, http.MethodDelete, "/clients/not-a-uuid", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportTransactions(t *testing.T) {
	s := newTestServer(t)
	token := register(t, s, "alice")
	clientID := createTestClient(t, s, token, "John")
	createTestLoan(t, s, token, clientID)

	rec := doRequest(t, s, http.MethodGet, "/transactions/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	require.NotZero(t, rec.Body.Len())
}
