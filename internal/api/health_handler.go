package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PingFunc checks a backing store. A nil PingFunc reports the store as disabled.
type PingFunc func(ctx context.Context) error

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	DB        string    `json:"db,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	ping        PingFunc
}

func NewHealthHandler(serviceName, version string, ping PingFunc) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		ping:        ping,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "disabled"
	if h.ping != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.ping(pingCtx); err != nil {
			dbStatus = "down"
		} else {
			dbStatus = "up"
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		DB:        dbStatus,
	})
}

// Banner answers GET / so a browser pointed at the API sees it running.
func (h *HealthHandler) Banner(c *gin.Context) {
	c.String(http.StatusOK, "Digital Life Lessons server is running")
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Banner)
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
