package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"linkapi.local/internal/app/links"
)

// Register mounts the whole public surface on the given engine: the
// liveness probe, the link-management API and the redirect entrypoint.
//
// The redirect route lives outside /api since users type the short
// URL directly into a browser. Its prefix is configurable per
// deployment (default /r).
func Register(r *gin.Engine, svc *links.Service, redirectPrefix string) {
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	api := r.Group("/api")
	api.GET("/links", NewListHandler(svc))
	api.POST("/links", NewCreateHandler(svc))
	api.GET("/links/:id", NewGetHandler(svc))
	api.PUT("/links/:id", NewUpdateHandler(svc))
	api.DELETE("/links/:id", NewDeleteHandler(svc))

	prefix := "/" + strings.Trim(redirectPrefix, "/")
	r.GET(prefix+"/:short_name", NewRedirectHandler(svc))

	r.NoRoute(func(c *gin.Context) {
		abortDetail(c, http.StatusNotFound, "not found")
	})
	r.NoMethod(func(c *gin.Context) {
		abortDetail(c, http.StatusNotFound, "not found")
	})
}

// Recovery converts a panicking handler into the generic 500 shape so
// one bad request never takes the process down and never leaks
// internals to the client.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		abortDetail(c, http.StatusInternalServerError, "internal server error")
	})
}
