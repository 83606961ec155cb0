package api

import (
	"embed"
	"html/template"

	"github.com/ridloal/storefront-dashboard/internal/catalog/domain"
	"github.com/ridloal/storefront-dashboard/internal/dashboard/form"
	"github.com/ridloal/storefront-dashboard/internal/money"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// ParseTemplates parses the embedded pages once at startup.
func ParseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"money":       money.Format,
		"productPath": form.ProductPath,
		"isError": func(n domain.Notice) bool {
			return n.Kind == domain.NoticeError
		},
	}).ParseFS(templateFS, "templates/*.gohtml")
}
