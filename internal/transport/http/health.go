package httptransport

import (
	"net/http"
	"runtime"
	"time"

	"formation/pkg/platform/httputil"
	"formation/pkg/requestcontext"
)

// HealthResponse is the liveness payload. It never reports a failure: a
// process that can answer is alive.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	GoVersion string    `json:"go_version"`
}

func handleHealth(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:    "ok",
			Timestamp: requestcontext.Now(r.Context()),
			Version:   version,
			GoVersion: runtime.Version(),
		})
	}
}
