package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type Response struct {
	Success    bool                      `json:"success"`
	Data       any                       `json:"data,omitempty"`
	Message    string                    `json:"message,omitempty"`
	Errors     []usecase.ValidationError `json:"errors,omitempty"`
	Pagination *usecase.Pagination       `json:"pagination,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("⚠️ failed to encode response: %v", err)
	}
}

var statusByCode = map[string]int{
	usecase.CodeValidation:      http.StatusBadRequest,
	usecase.CodeUnauthenticated: http.StatusUnauthorized,
	usecase.CodeForbidden:       http.StatusForbidden,
	usecase.CodeNotFound:        http.StatusNotFound,
	usecase.CodeConflict:        http.StatusBadRequest,
}

// writeError renders domain errors with their message. Anything else is
// logged and answered with a generic 500.
func writeError(w http.ResponseWriter, err error) {
	if de, ok := usecase.AsDomainError(err); ok {
		status, known := statusByCode[de.Code]
		if !known {
			status = http.StatusBadRequest
		}
		middleware.RecordDomainError(de.Code)
		writeJSON(w, status, Response{Success: false, Message: de.Message, Errors: de.Fields})
		return
	}

	log.Printf("❌ request failed: %v", err)
	middleware.RecordDomainError(usecase.CodeInternal)
	writeJSON(w, http.StatusInternalServerError, Response{Success: false, Message: "Internal server error"})
}

// decodeJSON writes a 400 and returns false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "Invalid JSON"})
		return false
	}
	return true
}
