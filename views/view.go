package views

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
)

// Render writes an HTML component, logging failures since the status line may already be sent
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	if err := component.Render(r.Context(), w); err != nil {
		slog.Error("failed to render page", "path", r.URL.Path, "error", err)
	}
}
