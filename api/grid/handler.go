package grid

import (
	"encoding/json"
	"net/http"

	coregrid "github.com/kianlev/gridflex/core/grid"
)

// NewStatusHandler returns an HTTP handler exposing the current grid
// state via GET /api/grid/status.
func NewStatusHandler(sched *coregrid.Scheduler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		view := sched.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(view); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
