package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/hailin-dev/rainclass/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	MONITORING_SVC          = "monitoring_svc"
	SERVICE_NAME            = "rainclass"
	DEFAULT_PROMETHEUS_PORT = 2112
)

var (
	platformRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_requests_total",
			Help: "Total requests against platform endpoints",
		},
		[]string{"endpoint", "status"},
	)

	videoHeartbeatsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "video_heartbeats_total",
			Help: "Total video progress heartbeats sent",
		},
	)

	activitiesClassifiedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_classified_total",
			Help: "Activities classified per kind, unknown bucket included",
		},
		[]string{"kind"},
	)

	drivesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drives_total",
			Help: "Drive attempts per kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

func recordRequest(endpoint, status string) {
	platformRequestsTotal.WithLabelValues(endpoint, status).Inc()
}

func recordHeartbeat() {
	videoHeartbeatsTotal.Inc()
}

func recordClassified(kind model.Kind) {
	activitiesClassifiedTotal.WithLabelValues(kind.String()).Inc()
}

func recordDrive(kind model.Kind, outcome model.Outcome) {
	drivesTotal.WithLabelValues(kind.String(), outcome.String()).Inc()
}

// MonitoringService serves prometheus metrics and a health probe on a side
// port while the long-running pass executes on the main control flow.
type MonitoringService struct {
	context.DefaultService

	port     int
	register *prometheus.Registry
	server   *fiber.App
}

func (svc *MonitoringService) Id() string {
	return MONITORING_SVC
}

func (svc *MonitoringService) Start() error {
	portStr := os.Getenv("PROMETHEUS_PORT")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = DEFAULT_PROMETHEUS_PORT
	}
	svc.port = port

	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	reg.MustRegister(
		platformRequestsTotal,
		videoHeartbeatsTotal,
		activitiesClassifiedTotal,
		drivesTotal,
	)

	svc.register = reg

	config := fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		},
	}

	svc.server = fiber.New(config)
	svc.server.Use(recover.New())

	svc.server.Get("/metrics", svc.metricsHandler)
	svc.server.Get("/health", svc.healthHandler)

	// The orchestrator blocks the container after this service; listen on
	// the side so Start returns.
	go func() {
		if err := svc.server.Listen(fmt.Sprintf(":%v", svc.port)); err != nil {
			log.Error().Err(err).Msg("Metrics server stopped")
		}
	}()

	log.Info().Int("port", svc.port).Msg("Prometheus metrics server started")
	return nil
}

func (svc *MonitoringService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

func (svc *MonitoringService) metricsHandler(c *fiber.Ctx) error {
	handler := promhttp.HandlerFor(svc.register, promhttp.HandlerOpts{})
	return adaptor.HTTPHandler(handler)(c)
}

func (svc *MonitoringService) healthHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"service":   SERVICE_NAME,
		"timestamp": time.Now().Unix(),
	})
}
