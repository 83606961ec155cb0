package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the dashboard's gin engine with templates and middleware.
func NewRouter(h *DashboardHandler, cookieSecure bool) (*gin.Engine, error) {
	tmpl, err := ParseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.Default()
	router.RedirectTrailingSlash = false
	// Product ids are escaped path segments; route on the raw path so an
	// escaped slash stays inside :id.
	router.UseRawPath = true
	router.SetHTMLTemplate(tmpl)
	router.Use(SessionMiddleware(h.sessions, cookieSecure))

	h.RegisterRoutes(&router.RouterGroup)
	return router, nil
}
