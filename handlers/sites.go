package handlers

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"mapnav-server/mapdata"
	"mapnav-server/routing"
	"mapnav-server/shared"
)

const settingsCookieName = "mapnav_settings"

func locationResult(loc mapdata.Location) shared.LocationResult {
	return shared.LocationResult{
		Id:       loc.LocationId(),
		Title:    loc.Title(),
		Subtitle: loc.Subtitle(),
		Url:      "/locations/" + loc.LocationId(),
	}
}

func SearchLocationsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Info("received request", "handler", "SearchLocationsHandler")

	query := r.URL.Query().Get("q")

	results := mapIndex.Search(query)

	response := shared.SearchLocationsResponse{
		Query:   query,
		Results: []shared.LocationResult{},
	}
	for _, loc := range results {
		response.Results = append(response.Results, locationResult(loc))
	}

	writeJSON(w, response)
}

func GetLocationHandler(w http.ResponseWriter, r *http.Request) {
	slog.Info("received request", "handler", "GetLocationHandler")

	vars := mux.Vars(r)
	locationId := vars["locationId"]

	loc := mapIndex.Get(locationId)
	if loc == nil {
		writeApiError(w, shared.ApiError{
			Type:   shared.ApiErrorTypeNotFound,
			Status: http.StatusNotFound,
			Msg:    "Location not found",
		})
		return
	}

	writeJSON(w, locationResult(loc))
}

func ListLevelsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Info("received request", "handler", "ListLevelsHandler")

	levels := mapIndex.Levels()
	if levels == nil {
		levels = []string{}
	}
	writeJSON(w, levels)
}

// routeSettings is what the settings cookie stores, so the accessibility
// filters survive between visits.
type routeSettings struct {
	Stairs     string   `json:"stairs"`
	Escalators string   `json:"escalators"`
	Elevators  string   `json:"elevators"`
	Include    []string `json:"include"`
	Avoid      []string `json:"avoid"`
}

func readSettingsCookie(r *http.Request) routeSettings {
	settings := routeSettings{Stairs: "yes", Escalators: "yes", Elevators: "yes"}

	cookie, err := r.Cookie(settingsCookieName)
	if err != nil {
		return settings
	}
	decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return settings
	}
	var stored routeSettings
	if err := json.Unmarshal(decoded, &stored); err != nil {
		return settings
	}

	if stored.Stairs != "" {
		settings.Stairs = stored.Stairs
	}
	if stored.Escalators != "" {
		settings.Escalators = stored.Escalators
	}
	if stored.Elevators != "" {
		settings.Elevators = stored.Elevators
	}
	settings.Include = stored.Include
	settings.Avoid = stored.Avoid
	return settings
}

func writeSettingsCookie(w http.ResponseWriter, settings routeSettings) {
	encoded, err := json.Marshal(settings)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:    settingsCookieName,
		Value:   base64.URLEncoding.EncodeToString(encoded),
		Path:    "/",
		Expires: time.Now().Add(30 * 24 * time.Hour),
	})
}

func RouteHandler(w http.ResponseWriter, r *http.Request) {
	slog.Info("received request", "handler", "RouteHandler")

	var requestBody shared.RouteRequest
	if !readJSON(w, r, &requestBody) {
		return
	}

	settings := readSettingsCookie(r)
	if requestBody.Stairs != "" {
		settings.Stairs = requestBody.Stairs
	}
	if requestBody.Escalators != "" {
		settings.Escalators = requestBody.Escalators
	}
	if requestBody.Elevators != "" {
		settings.Elevators = requestBody.Elevators
	}
	if requestBody.Include != nil {
		settings.Include = requestBody.Include
	}
	if requestBody.Avoid != nil {
		settings.Avoid = requestBody.Avoid
	}

	allowed := routing.AllowedCTypes(settings.Stairs, settings.Escalators, settings.Elevators)
	settings.Stairs = routing.ReverseCTypes(allowed, "stairs")
	settings.Escalators = routing.ReverseCTypes(allowed, "escalator")
	settings.Elevators = routing.ReverseCTypes(allowed, "elevator")

	origin := mapIndex.Get(requestBody.Origin)
	destination := mapIndex.Get(requestBody.Destination)
	if origin == nil || destination == nil {
		writeApiError(w, shared.ApiError{
			Type:   shared.ApiErrorTypeNotFound,
			Status: http.StatusNotFound,
			Msg:    "Unknown origin or destination",
		})
		return
	}

	opts := routing.Options{
		Allowed: allowed,
		Include: map[string]bool{},
		Avoid:   map[string]bool{},
	}
	for _, group := range settings.Include {
		opts.Include[group] = true
	}
	for _, group := range settings.Avoid {
		opts.Avoid[group] = true
	}

	graph := routing.NewGraph(mapIndex.RoutingData())

	response := shared.RouteResponse{
		Stairs:     settings.Stairs,
		Escalators: settings.Escalators,
		Elevators:  settings.Elevators,
		Include:    settings.Include,
		Avoid:      settings.Avoid,
	}

	route, err := graph.Route(origin, destination, opts)
	switch err {
	case nil:
		response.Route = route
	case routing.ErrNoRouteFound:
		response.Error = shared.RouteErrorNoRouteFound
	case routing.ErrAlreadyThere:
		response.Error = shared.RouteErrorAlreadyThere
	case routing.ErrNotYetRoutable:
		response.Error = shared.RouteErrorNotYetRoutable
	default:
		slog.Error("error computing route", "error", err)
		http.Error(w, "error computing route", http.StatusInternalServerError)
		return
	}

	if requestBody.SaveSettings {
		writeSettingsCookie(w, settings)
	}

	writeJSON(w, response)
}
