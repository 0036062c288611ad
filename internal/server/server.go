// Package server exposes the dashboard API over HTTP. All endpoints are
// read-only JSON; aggregate views degrade to empty payloads rather than
// surfacing upstream failures as 5xx.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"perpdash/config"
	"perpdash/internal/service"
	"perpdash/logger"
)

// Server hosts the Gin-powered dashboard API.
type Server struct {
	address      string
	readTimeout  time.Duration
	writeTimeout time.Duration
	svc          *service.Service
	log          *logger.Log
	httpServer   *http.Server
}

// New constructs the API server.
func New(cfg config.ServerConfig, svc *service.Service, log *logger.Log) *Server {
	return &Server{
		address:      normalizeAddress(cfg.Address),
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		svc:          svc,
		log:          log,
	}
}

// Address reports the network address the server listens on.
func (s *Server) Address() string {
	return s.address
}

// Run starts the HTTP server and blocks until the provided context is
// cancelled or the server exits with an error.
func (s *Server) Run(ctx context.Context) error {
	router, err := s.buildRouter()
	if err != nil {
		return err
	}

	s.httpServer = s.newHTTPServer(router)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.log.WithComponent("server").WithFields(logger.Fields{
		"address": s.address,
	}).Info("api server started")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if err == nil {
			return nil
		}
		return err
	}
}

func (s *Server) newHTTPServer(handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         s.address,
		Handler:      handler,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}
}

func (s *Server) buildRouter() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/volume/24h", s.handleVolume24h)
		api.GET("/volume/summary", s.handleVolumeSummary)
		api.GET("/volume/top-pairs", s.handleTopPairs)
		api.GET("/leaderboard", s.handleLeaderboard)

		accounts := api.Group("/accounts/:id")
		accounts.GET("/history", s.handleHistory)
		accounts.GET("/analytics", s.handleAnalytics)
		accounts.GET("/archetype", s.handleArchetype)
		accounts.GET("/spot", s.handleSpot)
		accounts.GET("/balance", s.handleBalance)
	}

	return router, nil
}

// requestLogger tags every request with an id and logs its outcome.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header("X-Request-Id", requestID)

		start := time.Now()
		c.Next()

		logger.IncrementRequestServed(c.Writer.Size())
		s.log.WithComponent("server").WithFields(logger.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Debug("request handled")
	}
}

// accountID parses the :id path parameter. A malformed id is the only client
// error the API reports.
func accountID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return 0, false
	}
	return id, true
}

func (s *Server) handleVolume24h(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Volume24h(c.Request.Context()))
}

func (s *Server) handleVolumeSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.VolumeSummary(c.Request.Context()))
}

func (s *Server) handleTopPairs(c *gin.Context) {
	sum := s.svc.VolumeSummary(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"spot_markets":    sum.TopSpotMarkets,
		"futures_markets": sum.TopFuturesMarkets,
		"spot_tokens":     sum.TopSpotTokens,
		"futures_tokens":  sum.TopFuturesTokens,
	})
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.LeaderboardView(c.Request.Context()))
}

func (s *Server) handleHistory(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	view := s.svc.TraderView(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{
		"account_id": view.AccountID,
		"trades":     view.Trades,
		"calendar":   view.Calendar,
		"series":     view.Series,
	})
}

func (s *Server) handleAnalytics(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.svc.TraderView(c.Request.Context(), id))
}

func (s *Server) handleArchetype(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.svc.ArchetypeView(c.Request.Context(), id))
}

func (s *Server) handleSpot(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.svc.SpotSummary(c.Request.Context(), id))
}

func (s *Server) handleBalance(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.svc.BalanceSheet(c.Request.Context(), id))
}

func (s *Server) handleHealth(c *gin.Context) {
	payload := gin.H{"status": "ok"}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		payload["cpu_percent"] = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		payload["memory_percent"] = vm.UsedPercent
	}
	c.JSON(http.StatusOK, payload)
}

func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "0.0.0.0:8080"
	}
	if strings.HasPrefix(addr, ":") {
		return "0.0.0.0" + addr
	}
	return addr
}
