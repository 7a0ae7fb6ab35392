package factus

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contadores de llamadas a Factus. Un *Metrics nil no registra nada.
type Metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	exchanges *prometheus.CounterVec
}

// NewMetrics registra los colectores en reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "factus",
			Name:      "requests_total",
			Help:      "Llamadas a la API de Factus por método, endpoint y estado.",
		}, []string{"method", "endpoint", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "factus",
			Name:      "request_duration_seconds",
			Help:      "Latencia de las llamadas a Factus.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "endpoint"}),
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "factus",
			Name:      "token_exchanges_total",
			Help:      "Intercambios OAuth2 (login / refresh) por resultado.",
		}, []string{"grant", "result"}),
	}
	reg.MustRegister(m.requests, m.duration, m.exchanges)
	return m
}

func (m *Metrics) observeRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	ep := endpointLabel(path)
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, ep, code).Inc()
	m.duration.WithLabelValues(method, ep).Observe(elapsed.Seconds())
}

func (m *Metrics) observeExchange(grant string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.exchanges.WithLabelValues(grant, result).Inc()
}

// endpointLabel reemplaza segmentos con dígitos por ":id" para acotar la cardinalidad.
// "/v1/bills/validate/SETP990000123" → "/v1/bills/validate/:id"
func endpointLabel(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if strings.IndexFunc(p, unicode.IsDigit) >= 0 && !(i == 1 && p == "v1") {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
