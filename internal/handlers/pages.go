package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/iancarlosortega/gym-tracker/internal/middleware"
)

// pageTemplate is the minimal HTML shell returned for page routes.
// The frontend bundle bootstraps itself from this shell and talks to
// the JSON API; the server's job on page routes is access control, not
// rendering.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/assets/app.css">
</head>
<body>
<div id="app" data-page="{{.Page}}"{{if .Authenticated}} data-authenticated="true"{{end}}></div>
<script src="/assets/app.js"></script>
</body>
</html>
`))

type pageData struct {
	Title         string
	Page          string
	Authenticated bool
}

var pageTitles = map[string]string{
	"/":             "Gym Tracker",
	"/login":        "Sign In",
	"/profile":      "Profile",
	"/exercises":    "Exercise Library",
	"/measurements": "Body Measurements",
	"/progress":     "Progress",
	"/workout":      "Workout",
	"/workouts":     "Workouts",
	"/dashboard":    "Dashboard",
}

// PagesHandler serves the HTML shell for page routes. Access control
// runs before this handler, so by the time a request lands here the
// redirect decisions have already been made.
type PagesHandler struct{}

// NewPagesHandler creates the pages handler.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// Serve writes the HTML shell. Unknown paths get a 404; asset paths
// never reach this handler in production, where a CDN or reverse proxy
// serves them.
func (h *PagesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	title, known := pageTitles[r.URL.Path]
	if !known {
		if strings.HasPrefix(r.URL.Path, "/workouts/") {
			title = "Workout Detail"
		} else {
			http.NotFound(w, r)
			return
		}
	}

	_, authenticated := middleware.GetSession(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, pageData{
		Title:         title,
		Page:          r.URL.Path,
		Authenticated: authenticated,
	})
	if err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to write page shell")
	}
}
