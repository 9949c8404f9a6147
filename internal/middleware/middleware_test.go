package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"lifelessons-backend-go/internal/config"
)

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c.Request.Context()))
	})

	rr := perform(r, http.MethodGet, "/", "")
	generated := rr.Header().Get("X-Request-Id")
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, rr.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-Id"))
	assert.Equal(t, "abc-123", rr.Body.String())
}

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := gin.New()
	r.Use(RequestIDMiddleware(), RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	perform(r, http.MethodGet, "/ok?x=1", "")
	perform(r, http.MethodGet, "/bad", "")
	perform(r, http.MethodGet, "/fail", "")

	entries := logs.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, zap.InfoLevel, entries[0].Level)
		assert.Equal(t, zap.WarnLevel, entries[1].Level)
		assert.Equal(t, zap.ErrorLevel, entries[2].Level)
		fields := entries[0].ContextMap()
		assert.Equal(t, "/ok", fields["path"])
		assert.Equal(t, "x=1", fields["query"])
		assert.NotEmpty(t, fields["request_id"])
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	rr := perform(r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, rr.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(&config.Config{ClientURL: "https://app.example.com, https://admin.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, "https://admin.example.com", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
