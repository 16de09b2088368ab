// Package respond writes JSON response bodies.
package respond

import (
	"encoding/json"
	"net/http"
)

// JSON writes v with status 200.
func JSON(w http.ResponseWriter, v any) {
	Status(w, http.StatusOK, v)
}

// Status writes v with the given status. Headers are set before the status
// line so Content-Type is never lost.
func Status(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
