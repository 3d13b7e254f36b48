package handlers

import (
	"encoding/json"
	"net/http"
)

// listEnvelope is the paginated list shape all list endpoints return
type listEnvelope struct {
	Count   int         `json:"count"`
	Results interface{} `json:"results"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeList(w http.ResponseWriter, count int, results interface{}) {
	writeJSON(w, http.StatusOK, listEnvelope{Count: count, Results: results})
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
