package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestLoggerMiddleware_WritesAccessLine(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set("request_id", "req-1"); c.Next() })
	router.Use(ContextLogger(logger))
	router.Use(LoggerMiddleware(logger))
	router.GET("/ping", func(c *gin.Context) {
		if FromContext(c.Request.Context(), nil) == nil {
			t.Errorf("request logger missing from context")
		}
		c.String(http.StatusTeapot, "pong")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("access line is not json: %v (%s)", err, buf.String())
	}
	if line["path"] != "/ping" || line["request_id"] != "req-1" || line["level"] != "WARN" {
		t.Fatalf("unexpected access line %v", line)
	}
	if int(line["status"].(float64)) != http.StatusTeapot {
		t.Fatalf("unexpected status %v", line["status"])
	}
}

func TestFromContext_Fallback(t *testing.T) {
	fallback := NewSlogLogger(slog.Default())
	if FromContext(context.Background(), fallback) != fallback {
		t.Fatalf("expected fallback logger")
	}
}
