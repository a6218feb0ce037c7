// Package metrics exposes the ledger's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PaymentsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chitfund",
		Name:      "payments_recorded_total",
		Help:      "Payments committed, by instrument type.",
	}, []string{"pay_type"})

	EnrollmentsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chitfund",
		Name:      "enrollments_created_total",
		Help:      "Enrollments created, by path (explicit, registration, lazy).",
	}, []string{"path"})

	InterestRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chitfund",
		Name:      "interest_calculations_total",
		Help:      "Monthly interest calculations, by result.",
	}, []string{"result"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chitfund",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

const (
	PathExplicit     = "explicit"
	PathRegistration = "registration"
	PathLazy         = "lazy"
)

func init() {
	prometheus.MustRegister(PaymentsRecorded, EnrollmentsCreated, InterestRuns, httpDuration)
}

// Middleware observes request latency by matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		httpDuration.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
