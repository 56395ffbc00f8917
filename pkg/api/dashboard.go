package api

import "net/http"

func (s *Server) dashboardSummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.GetDashboardSummary(r.Context(), s.userFrom(r).ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) dashboardAlertsHandler(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.svc.GetAlerts(r.Context(), s.userFrom(r).ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, alerts)
}
