// Package httpjson writes and reads the JSON bodies every handler uses, and
// fixes the API's error vocabulary: invalid_input (400), unauthorized (401),
// not_found (404), duplicate_email (409), internal (500). Handlers map store
// errors to one of these before responding; store or driver detail is logged,
// never surfaced.
package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error codes surfaced to API callers.
const (
	CodeInvalidInput   = "invalid_input"
	CodeUnauthorized   = "unauthorized"
	CodeNotFound       = "not_found"
	CodeDuplicateEmail = "duplicate_email"
	CodeInternal       = "internal"
)

// maxBodyBytes bounds request bodies; notes are short text documents.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Write encodes v as the JSON response with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads the request body into dst. It returns an error for malformed
// JSON, a wrong content shape, or an oversized body.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty request body")
		}
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	return nil
}

// BadRequest writes a 400 invalid_input error with the given message.
func BadRequest(w http.ResponseWriter, msg string) {
	Write(w, http.StatusBadRequest, errorBody{Error: msg, Code: CodeInvalidInput})
}

// Unauthorized writes a 401 with a generic message. The message is the same
// for every authentication failure so callers cannot tell a bad email from a
// bad password.
func Unauthorized(w http.ResponseWriter, msg string) {
	Write(w, http.StatusUnauthorized, errorBody{Error: msg, Code: CodeUnauthorized})
}

// NotFound writes a 404. Used for absent entities and for entities owned by
// someone else — the two are intentionally indistinguishable.
func NotFound(w http.ResponseWriter, msg string) {
	Write(w, http.StatusNotFound, errorBody{Error: msg, Code: CodeNotFound})
}

// Conflict writes a 409 duplicate_email error.
func Conflict(w http.ResponseWriter, msg string) {
	Write(w, http.StatusConflict, errorBody{Error: msg, Code: CodeDuplicateEmail})
}

// Internal writes a 500 with a fixed message; the real error belongs in the
// log, not the response.
func Internal(w http.ResponseWriter) {
	Write(w, http.StatusInternalServerError, errorBody{Error: "a server error occurred", Code: CodeInternal})
}
