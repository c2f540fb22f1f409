package httpmiddleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// TraceName renames the server span to "METHOD pattern" so traces
// group by route instead of the otelhttp default operation name.
func TraceName() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		span.SetName(c.Request.Method + " " + c.FullPath())
		c.Next()
	}
}
