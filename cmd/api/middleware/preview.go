package middleware

import (
	"github.com/gin-gonic/gin"

	"spacetravelling/cmd/api/services"
)

const previewContextKey = "preview_context"

// Preview builds a fresh PreviewContext for every request from the preview
// cookie and stores it on the gin context only. The cookie value is the draft
// ref; its presence activates preview.
func Preview(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		pc := services.Published
		if ref, err := c.Cookie(cookieName); err == nil && ref != "" {
			pc = services.PreviewContext{Active: true, Ref: ref}
		}
		c.Set(previewContextKey, pc)
		c.Next()
	}
}

// PreviewFrom returns the request's PreviewContext, or the published context
// when the Preview middleware did not run.
func PreviewFrom(c *gin.Context) services.PreviewContext {
	if v, ok := c.Get(previewContextKey); ok {
		if pc, ok := v.(services.PreviewContext); ok {
			return pc
		}
	}
	return services.Published
}
