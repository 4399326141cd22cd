package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength caps the request ID copied onto spans
const MaxRequestIDLength = 128

// spanParams are the route parameters copied onto spans
var spanParams = []string{"page", "section", "name"}

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig returns the otelgin middleware, which starts a server
// span per request on the global tracer provider. Disabled, it only calls Next.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TracingAttributeInjector adds the request ID and the report page, section
// and table parameters to the current span. Place it after TracingWithConfig
// and RequestID.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				if len(id) > MaxRequestIDLength {
					id = id[:MaxRequestIDLength]
				}
				span.SetAttributes(attribute.String("request_id", id))
			}
			for _, p := range spanParams {
				if v := c.Param(p); v != "" {
					span.SetAttributes(attribute.String("dashboard."+p, v))
				}
			}
		}
		c.Next()
	}
}

// SpanErrorMarker marks the current span as failed for 4xx and 5xx
// responses. Place it after TracingWithConfig.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		message := "Client Error"
		switch {
		case status >= http.StatusInternalServerError:
			message = http.StatusText(status)
		case status == http.StatusNotFound:
			message = "Not Found"
		}
		span.SetStatus(codes.Error, message)
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}
