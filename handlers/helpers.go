package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"mapnav-server/db"
	"mapnav-server/shared"
)

// authenticate resolves the bearer session token. It writes the error
// response itself and returns nil when the request is not usable.
func authenticate(w http.ResponseWriter, r *http.Request) *db.Session {
	authHeader := r.Header.Get("Authorization")

	if authHeader == "" {
		slog.Debug("no auth header")
		http.Error(w, "no auth header", http.StatusUnauthorized)
		return nil
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		slog.Debug("invalid auth header")
		http.Error(w, "invalid auth header", http.StatusUnauthorized)
		return nil
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")

	session, err := db.ValidateSessionToken(token)
	if err != nil {
		slog.Debug("invalid session token", "error", err)
		writeApiError(w, shared.ApiError{
			Type:   shared.ApiErrorTypeInvalidSession,
			Status: http.StatusUnauthorized,
			Msg:    "Invalid session token",
		})
		return nil
	}

	return session
}

func writeApiError(w http.ResponseWriter, apiErr shared.ApiError) {
	bytes, err := json.Marshal(apiErr)
	if err != nil {
		slog.Error("error marshalling api error", "error", err)
		http.Error(w, "error marshalling api error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	w.Write(bytes)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	if err != nil {
		slog.Error("error marshalling response", "error", err)
		http.Error(w, "error marshalling response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(bytes)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Debug("error parsing request body", "error", err)
		http.Error(w, "error parsing request body", http.StatusBadRequest)
		return false
	}
	return true
}
