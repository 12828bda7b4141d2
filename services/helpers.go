package services

import (
	"encoding/json"
	"net/http"
)

// decodeJSON and writeJSONStatus are the JSON plumbing shared by every
// handler in the package.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
