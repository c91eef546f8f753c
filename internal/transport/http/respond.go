package http

import (
	"encoding/json"
	"net/http"
)

type dataEnvelope struct {
	Data interface{} `json:"data"`
}

type errorEnvelope struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, dataEnvelope{Data: data})
}

func respondError(w http.ResponseWriter, status int, message string, fields map[string]string) {
	respondJSON(w, status, errorEnvelope{Error: message, Fields: fields})
}
