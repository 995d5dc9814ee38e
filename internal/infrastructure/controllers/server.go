package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/envtracker/internal/domain/commands"
	"github.com/rios0rios0/envtracker/internal/domain/entities"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes the reconciliation commands as a JSON API.
type Server struct {
	e        *echo.Echo
	settings *entities.Settings
	report   commands.Report
	diff     commands.ChangeLogDiff
}

// NewServer creates the echo instance and registers every route.
func NewServer(
	settings *entities.Settings,
	report commands.Report,
	diff commands.ChangeLogDiff,
	gatherer prometheus.Gatherer,
) *Server {
	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogRemoteIP: true,
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.WithFields(logger.Fields{
				"remote_ip":  v.RemoteIP,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			}).Info("Handled request")
			return nil
		},
	}))
	e.Use(middleware.Recover())

	s := &Server{e: e, settings: settings, report: report, diff: diff}
	e.GET("/", s.index)
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/service-versions", s.serviceVersions)
	e.GET("/dbchangelogs/diff/:version", s.changeLogDiff)
	e.GET("/versions", s.versions)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) index(c echo.Context) error {
	if s.settings.CachedReportURL == "" {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "no cached report configured"})
	}
	return c.Redirect(http.StatusFound, s.settings.CachedReportURL)
}

// serviceVersions answers with the report even when some live builds were
// malformed; only a run that produced nothing is an error.
func (s *Server) serviceVersions(c echo.Context) error {
	report, err := s.report.Execute(context.WithoutCancel(c.Request().Context()), s.settings)
	if report == nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	if err != nil {
		logger.Warnf("Report finished with errors: %v", err)
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) changeLogDiff(c echo.Context) error {
	diffs, err := s.diff.Execute(context.WithoutCancel(c.Request().Context()), s.settings, c.Param("version"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, diffs)
}

// versions sorts the values of every "v" query parameter, each of which may
// hold a comma separated list.
func (s *Server) versions(c echo.Context) error {
	raw := lo.FlatMap(c.QueryParams()["v"], func(value string, _ int) []string {
		return strings.Split(value, ",")
	})
	raw = lo.Compact(lo.Map(raw, func(value string, _ int) string {
		return strings.TrimSpace(value)
	}))
	if len(raw) == 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "at least one v query parameter is required"})
	}

	sorted, err := entities.SortVersions(raw)
	if errors.Is(err, entities.ErrMalformedVersion) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, sorted)
}
