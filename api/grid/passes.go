package grid

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kianlev/gridflex/core/grid/logging"
)

// NewPassLogHandler returns an HTTP handler exposing past scheduling
// passes via GET /api/grid/passes.
func NewPassLogHandler(store logging.PassStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		q := logging.PassQuery{}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		q.ConsumerID = r.URL.Query().Get("consumer_id")
		q.ShedOnly = r.URL.Query().Get("shed_only") == "true"
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
