package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLevel(t *testing.T) {
	l, err := New("debug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug to be enabled")
	}

	if _, err := New("loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected a fallback logger")
	}

	l := zap.NewExample()
	if FromContext(WithContext(context.Background(), l)) != l {
		t.Error("expected the stored logger")
	}
}

func TestMiddlewareRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(Middleware(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) {
		FromContext(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusNoContent)
	})

	t.Run("generated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

		if rr.Header().Get("X-Request-ID") == "" {
			t.Error("expected a generated request id")
		}
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "req-42")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Header().Get("X-Request-ID") != "req-42" {
			t.Errorf("expected req-42, got %s", rr.Header().Get("X-Request-ID"))
		}
		handlerLogs := logs.FilterMessage("inside handler").FilterField(zap.String("request_id", "req-42"))
		if handlerLogs.Len() != 1 {
			t.Errorf("expected handler log tagged with request id")
		}
	})
}
