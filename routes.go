package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"mapnav-server/handlers"
	"mapnav-server/metrics"
)

func routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(metrics.Middleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "OK")
	})

	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		bytes, err := os.ReadFile("version.txt")

		if err != nil {
			http.Error(w, "Error getting version", http.StatusInternalServerError)
			return
		}

		fmt.Fprint(w, string(bytes))
	})

	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	r.HandleFunc("/sessions", handlers.CreateSessionHandler).Methods("POST")

	r.HandleFunc("/proposals", handlers.CreateProposalHandler).Methods("POST")
	r.HandleFunc("/proposals/{proposalId}", handlers.GetProposalHandler).Methods("GET")
	r.HandleFunc("/proposals/{proposalId}/check", handlers.CheckProposalHandler).Methods("POST")
	r.HandleFunc("/proposals/{proposalId}/sign_in", handlers.SignInProposalHandler).Methods("POST")
	r.HandleFunc("/proposals/{proposalId}/submit", handlers.SubmitProposalHandler).Methods("POST")

	r.HandleFunc("/oauth/callback", handlers.OAuthCallbackHandler).Methods("GET")

	r.HandleFunc("/levels", handlers.ListLevelsHandler).Methods("GET")
	r.HandleFunc("/locations/search", handlers.SearchLocationsHandler).Methods("GET")
	r.HandleFunc("/locations/{locationId}", handlers.GetLocationHandler).Methods("GET")
	r.HandleFunc("/route", handlers.RouteHandler).Methods("POST")

	return r
}
