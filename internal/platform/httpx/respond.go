// Package httpx provides HTTP response utilities for the JSON API.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/devcamper/devcamper-api/internal/shared"
)

// Envelope is the uniform success body.
type Envelope struct {
	Success    bool               `json:"success"`
	Count      *int               `json:"count,omitempty"`
	Pagination *shared.Pagination `json:"pagination,omitempty"`
	Token      string             `json:"token,omitempty"`
	Data       any                `json:"data,omitempty"`
}

// ErrorBody is the uniform failure body.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Data sends {success:true, data}.
func Data(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Success: true, Data: data})
}

// List sends {success:true, count, pagination?, data}.
func List(w http.ResponseWriter, count int, pagination *shared.Pagination, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Count: &count, Pagination: pagination, Data: data})
}

// Empty sends {success:true, data:{}}.
func Empty(w http.ResponseWriter) {
	Data(w, http.StatusOK, struct{}{})
}

// DecodeJSON decodes JSON request body into the target struct. An empty body
// leaves target untouched.
func DecodeJSON(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return shared.Wrap(shared.ErrValidation, err, "Malformed JSON body")
	}
	return nil
}
