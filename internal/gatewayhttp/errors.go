package gatewayhttp

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorEnvelope is the JSON shape of every error response (spec §6).
type errorEnvelope struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, prefix, detail string) {
	if status >= 500 {
		log.Error("gatewayhttp: request failed", "status", status, "detail", detail)
		writeJSON(w, status, errorEnvelope{Error: "An unexpected error has occurred"})
		return
	}
	log.Debug("gatewayhttp: request rejected", "status", status, "detail", detail)
	writeJSON(w, status, errorEnvelope{Error: prefix + detail})
}

func badRequest(w http.ResponseWriter, log *slog.Logger, detail string) {
	writeError(w, log, http.StatusBadRequest, "Bad request: ", detail)
}

func unauthorized(w http.ResponseWriter, log *slog.Logger, detail string) {
	writeError(w, log, http.StatusUnauthorized, "Authorization error: ", detail)
}

func internalError(w http.ResponseWriter, log *slog.Logger, detail string) {
	writeError(w, log, http.StatusInternalServerError, "", detail)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
