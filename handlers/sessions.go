package handlers

import (
	"log/slog"
	"net/http"

	"mapnav-server/db"
	"mapnav-server/shared"
)

func CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	slog.Info("received request", "handler", "CreateSessionHandler")

	token, _, err := db.CreateSession()
	if err != nil {
		slog.Error("error creating session", "error", err)
		http.Error(w, "error creating session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, shared.CreateSessionResponse{Token: token})
}
