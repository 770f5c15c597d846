package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/terraincognita07/miffy/internal/logging"
	"github.com/terraincognita07/miffy/internal/schedule"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miffy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "miffy_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	IntakeActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miffy_intake_actions_total",
			Help: "Medication intake actions by outcome",
		},
		[]string{"action", "result"},
	)

	RealtimeSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "miffy_realtime_subscribers",
			Help: "Open real-time subscriptions",
		},
	)

	RealtimeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miffy_realtime_events_total",
			Help: "Events published to real-time topics",
		},
		[]string{"topic_kind"},
	)
)

// Middleware records request count and latency per matched route and logs
// server errors.
func Middleware(logger *logging.Logger) fiber.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.WithComponent("http")

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		route := c.Route().Path
		method := c.Method()
		elapsed := time.Since(start)

		HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())

		if status >= fiber.StatusInternalServerError {
			logger.Errorw("request failed",
				"method", method,
				"path", c.Path(),
				"status", status,
				"duration_ms", elapsed.Milliseconds(),
			)
		}
		return nil
	}
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

type IntakeObserver struct{}

func (IntakeObserver) ObserveIntake(action schedule.Action, result schedule.Result) {
	IntakeActionsTotal.WithLabelValues(string(action), string(result)).Inc()
}

type RealtimeObserver struct{}

func (RealtimeObserver) ObservePublish(topic string) {
	RealtimeEventsTotal.WithLabelValues(TopicKind(topic)).Inc()
}

func (RealtimeObserver) ObserveSubscribers(delta int) {
	RealtimeSubscribers.Add(float64(delta))
}

// TopicKind reduces a topic to its kind so that ids never become label values.
func TopicKind(topic string) string {
	parts := strings.Split(topic, ":")
	if parts[0] == "couple" && len(parts) == 3 {
		return "couple." + parts[2]
	}
	return parts[0]
}
