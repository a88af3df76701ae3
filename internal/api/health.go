package api

import (
	"net/http"
	"time"
)

// healthResponse is the GET /health reply.
type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database,omitempty"`
	Time     string `json:"time"`
}

// handleHealth reports service liveness. Database trouble degrades the
// status but still answers 200: the process is up and serving.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Version: s.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	if s.database != nil {
		if err := s.database.HealthCheck(r.Context()); err != nil {
			s.logger.Warn("database health check failed", "error", err)
			resp.Status = "degraded"
			resp.Database = "unreachable"
		} else {
			resp.Database = "ok"
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
