package http

import (
	"net/http"
	"time"

	"github.com/ecommerce-api/internal/logger"
	"github.com/ecommerce-api/internal/model"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func init() {
	binding.EnableDecoderDisallowUnknownFields = true
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		model.UseWireFieldNames(v)
	}
}

// NewRouter builds the engine serving the public API. Extra middleware runs
// after request logging and CORS.
func NewRouter(log *zap.Logger, h *Handler, middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(CORS())
	r.Use(middleware...)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h.RegisterRoutes(r)
	return r
}

// CORS allows every origin, method and header, with credentials. Browsers do
// not treat "*" as a wildcard on credentialed requests, so the request origin
// and the requested headers are echoed back instead.
func CORS() gin.HandlerFunc {
	policy := cors.New(cors.Config{
		AllowOriginFunc: func(string) bool { return true },
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			logger.RequestIDHeader, "traceparent",
		},
		ExposeHeaders:    []string{logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})

	return func(c *gin.Context) {
		if requested := c.GetHeader("Access-Control-Request-Headers"); requested != "" &&
			c.Request.Method == http.MethodOptions && c.GetHeader("Origin") != "" {
			c.Writer = &echoHeadersWriter{ResponseWriter: c.Writer, requested: requested}
		}
		policy(c)
	}
}

// echoHeadersWriter replaces the preflight's allowed header list with the
// headers the client asked for, just before the response is committed.
type echoHeadersWriter struct {
	gin.ResponseWriter
	requested string
}

func (w *echoHeadersWriter) WriteHeader(code int) {
	w.echo()
	w.ResponseWriter.WriteHeader(code)
}

func (w *echoHeadersWriter) WriteHeaderNow() {
	w.echo()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *echoHeadersWriter) Write(b []byte) (int, error) {
	w.echo()
	return w.ResponseWriter.Write(b)
}

func (w *echoHeadersWriter) echo() {
	w.Header().Set("Access-Control-Allow-Headers", w.requested)
}
