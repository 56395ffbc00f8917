package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/hkloans/loantrack/pkg/lending"
	"github.com/hkloans/loantrack/pkg/store"
)

// Server exposes the lending core over HTTP. All routes except /health and
// /register require a bearer token resolving to a user.
type Server struct {
	svc        *lending.Service
	store      store.Storage
	httpServer *http.Server
}

func NewServer(port string, svc *lending.Service, st store.Storage) *Server {
	s := &Server{svc: svc, store: st}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.healthHandler).Methods("GET")
	router.HandleFunc("/register", s.registerHandler).Methods("POST")

	authed := router.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)

	authed.HandleFunc("/clients", s.listClientsHandler).Methods("GET")
	authed.HandleFunc("/clients", s.createClientHandler).Methods("POST")
	authed.HandleFunc("/clients/{id}", s.updateClientHandler).Methods("PUT")
	authed.HandleFunc("/clients/{id}", s.deleteClientHandler).Methods("DELETE")
	authed.HandleFunc("/clients/{id}/stats", s.clientStatsHandler).Methods("GET")

	authed.HandleFunc("/partners", s.listPartnersHandler).Methods("GET")
	authed.HandleFunc("/partners", s.createPartnerHandler).Methods("POST")
	authed.HandleFunc("/partners/{id}", s.deletePartnerHandler).Methods("DELETE")

	authed.HandleFunc("/loans", s.listLoansHandler).Methods("GET")
	authed.HandleFunc("/loans", s.createLoanHandler).Methods("POST")
	authed.HandleFunc("/loans/{id}", s.deleteLoanHandler).Methods("DELETE")
	authed.HandleFunc("/loans/{id}/renegotiate", s.renegotiateLoanHandler).Methods("POST")

	authed.HandleFunc("/installments/{id}/pay", s.payInstallmentHandler).Methods("POST")
	authed.HandleFunc("/installments/{id}", s.editInstallmentHandler).Methods("PUT")
	authed.HandleFunc("/installments/{id}/duplicate", s.duplicateInstallmentHandler).Methods("POST")
	authed.HandleFunc("/installments/{id}", s.deleteInstallmentHandler).Methods("DELETE")

	authed.HandleFunc("/dashboard/summary", s.dashboardSummaryHandler).Methods("GET")
	authed.HandleFunc("/dashboard/alerts", s.dashboardAlertsHandler).Methods("GET")

	authed.HandleFunc("/transactions", s.listTransactionsHandler).Methods("GET")
	authed.HandleFunc("/transactions", s.createTransactionHandler).Methods("POST")
	authed.HandleFunc("/transactions/export", s.exportTransactionsHandler).Methods("GET")
	authed.HandleFunc("/transactions/{id}", s.deleteTransactionHandler).Methods("DELETE")

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
