package utils

import (
	"encoding/json"
	"errors"
	"net/http"
)

// JSON writes a JSON response with status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// JSONError writes {"error": "..."} with a given status.
func JSONError(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// DecodeJSON parses the JSON body into v. On failure it writes the
// 400 response itself and returns a non-nil error so the handler can
// bail out.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON format")
		return errors.New("empty request body")
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON format")
		return err
	}
	return nil
}
