package api

import (
	"encoding/json"
	"log"
	"net/http"

	"parkhub/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError maps an error to its HTTP status and a safe message. Internal
// details are logged, never sent to the client.
func writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": apperrors.UserMessage(err)})
}
