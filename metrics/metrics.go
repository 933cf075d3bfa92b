package metrics

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mapnav_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	},
	[]string{"route", "method", "status"},
)

var workflowTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mapnav_workflow_transitions_total",
		Help: "Edit-proposal workflow transitions by resulting state.",
	},
	[]string{"state"},
)

func Handler() http.Handler {
	return promhttp.Handler()
}

func CountTransition(state string) {
	workflowTransitions.WithLabelValues(state).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// Middleware records request counts per mux route template.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if template, err := current.GetPathTemplate(); err == nil {
				route = template
			}
		}
		requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
	})
}
