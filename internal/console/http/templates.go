package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// views holds the parsed page templates. Each page is parsed together
// with the base layout so pages can only reference blocks the layout
// defines.
type views struct {
	login      *template.Template
	dashboard  *template.Template
	users      *template.Template
	createUser *template.Template
}

func parseViews() *views {
	page := func(name string) *template.Template {
		return template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/"+name))
	}
	return &views{
		login:      page("login.html"),
		dashboard:  page("dashboard.html"),
		users:      page("users.html"),
		createUser: page("create_user.html"),
	}
}

// render executes the template into a buffer first so a template error
// never produces a half-written page.
func render(w http.ResponseWriter, logger *slog.Logger, tmpl *template.Template, status int, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		logger.Error("template render failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
