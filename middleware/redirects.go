package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminLoginPath is the canonical login URL. It is served by routes.RegisterAuthRoutes.
const AdminLoginPath = "/admin/login"

var legacyLoginPaths = map[string]bool{
	"/login":        true,
	"/login/admin":  true,
	"/admin/login/": true,
}

// LegacyRedirects sends old login URLs to /admin/login and strips one
// trailing slash from other /admin/ paths, answering 307 so the method and
// body survive. Query strings are preserved. Register it with engine.Use so
// it runs before routing.
func LegacyRedirects() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		target := ""
		switch {
		case legacyLoginPaths[path]:
			target = AdminLoginPath
		case strings.HasPrefix(path, "/admin/") && len(path) > len("/admin/") && strings.HasSuffix(path, "/"):
			target = strings.TrimSuffix(path, "/")
		}
		if target == "" {
			c.Next()
			return
		}

		if q := c.Request.URL.RawQuery; q != "" {
			target += "?" + q
		}
		c.Redirect(http.StatusTemporaryRedirect, target)
		c.Abort()
	}
}
