package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// WriteJSON marshals data and writes it with statusCode. It returns the
// number of body bytes written.
//
// Documents are marshaled before any header is sent, so a value that cannot
// be encoded turns into a JSON 500 error body instead of a truncated
// response.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	body, err := json.Marshal(data)
	if err != nil {
		body, _ = json.Marshal(errorBody{Error: http.StatusText(http.StatusInternalServerError)})
		writeBody(w, body, http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	return writeBody(w, body, statusCode)
}

// WriteError writes {"error": msg} with statusCode. traceID is echoed back
// when non-empty so clients can correlate with server logs.
func WriteError(w http.ResponseWriter, msg, traceID string, statusCode int) {
	_, _ = WriteJSON(w, errorBody{Error: msg, TraceID: traceID}, statusCode)
}

func writeBody(w http.ResponseWriter, body []byte, statusCode int) (int, error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	return w.Write(body)
}
