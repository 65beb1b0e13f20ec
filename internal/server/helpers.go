package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// PathSegments splits the path after prefix into non-empty segments.
// PathSegments(r, "/api/facts/") on /api/facts/AAPL.US/Assets yields
// ["AAPL.US", "Assets"].
func PathSegments(r *http.Request, prefix string) []string {
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) {
		return nil
	}
	var out []string
	for _, part := range strings.Split(path[len(prefix):], "/") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// QueryInt parses a non-negative integer query parameter. A missing value
// returns def; a malformed or negative one returns ok=false.
func QueryInt(r *http.Request, name string, def int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
