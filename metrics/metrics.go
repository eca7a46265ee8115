package metrics

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "maternity_http_requests_total",
		Help: "HTTP requests by method and response status.",
	}, []string{"method", "status"})

	AuthDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "maternity_auth_decisions_total",
		Help: "Authorization decisions by outcome.",
	}, []string{"outcome"})

	AuditWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "maternity_audit_writes_total",
		Help: "Audit rows written, by action and result.",
	}, []string{"action", "result"})

	OpenURNIEpisodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "maternity_urni_open_episodes",
		Help: "URNI episodes currently admitted, as of the last census.",
	})
)

// ObserveRequest counts a finished request.
func ObserveRequest(method string, status int) {
	HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Handler exposes the default registry on a fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
