package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/skill-tracker/internal/utils"
)

func newMiddlewareRouter(origins ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupMiddleware(router, utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), origins...)
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/panic", func(c *gin.Context) { panic("boom") })
	return router
}

func TestRequestID(t *testing.T) {
	router := newMiddlewareRouter()

	tests := []struct {
		name    string
		header  string
		keepsIt bool
	}{
		{name: "uuid kept", header: "0b7c1f0e-9a52-4c3e-8d0c-3f0f2b7a6e11", keepsIt: true},
		{name: "garbage replaced", header: "not-an-id\r\nX-Evil: 1"},
		{name: "generated", header: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ok", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-ID")
			assert.NotEmpty(t, got)
			if tt.keepsIt {
				assert.Equal(t, tt.header, got)
			} else {
				assert.NotEqual(t, tt.header, got)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	t.Run("open by default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ok", nil)
		req.Header.Set("Origin", "https://app.example")
		w := httptest.NewRecorder()
		newMiddlewareRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allow list", func(t *testing.T) {
		router := newMiddlewareRouter("https://app.example")

		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("Origin", "https://app.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodOptions, "/ok", nil)
		req.Header.Set("Origin", "https://evil.example")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRecovery(t *testing.T) {
	w := httptest.NewRecorder()
	newMiddlewareRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
