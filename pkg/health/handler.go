package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// response is the JSON body served by the probe endpoints.
type response struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// LivenessHandler reports that the process is up. It never touches
// dependencies; a wedged dependency must not get the process killed.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, response{
			Status:    "ok",
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs every checker and reports 200 only when all
// dependencies answer. Load balancers and orchestrators use this to
// gate traffic.
func ReadinessHandler(checkers ...Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string, len(checkers))
		healthy := true

		for _, checker := range checkers {
			result := checker.Check(r.Context())
			if result.Healthy {
				checks[string(checker.Type())] = "ok"
				continue
			}
			healthy = false
			checks[string(checker.Type())] = result.Message
		}

		status := http.StatusOK
		body := response{Status: "ok", Timestamp: time.Now().UTC(), Checks: checks}
		if !healthy {
			status = http.StatusServiceUnavailable
			body.Status = "unavailable"
		}
		writeJSON(w, status, body)
	}
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
