package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kvit-dev/caleoban/utilities"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utilities.LogError(err, "Error encoding JSON response")
	}
}

type errorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// blockedWarning is the body of a 409 answer to a blocked transition.
// Clients show it and hide it again after DismissAfterMs.
type blockedWarning struct {
	Message        string   `json:"message"`
	TaskID         string   `json:"taskId"`
	BlockedBy      []string `json:"blockedBy"`
	DismissAfterMs int64    `json:"dismissAfterMs"`
}

const blockedMessage = "Task is blocked by unfinished dependencies!"
