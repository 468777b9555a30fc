package web

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/s0up4200/moviedeck/genre"
	"github.com/s0up4200/moviedeck/tmdb"
)

type templates struct {
	pages map[string]*template.Template
}

func parseTemplates(imageBase string) (*templates, error) {
	funcs := template.FuncMap{
		"poster": func(path string) string {
			return tmdb.ImageURL(imageBase, path)
		},
		"genreNames": func(ids []int) string {
			return strings.Join(genre.Names(ids), " · ")
		},
		"rating": func(r float64) string {
			return fmt.Sprintf("%.1f", r)
		},
		"runtime": func(minutes int) string {
			if minutes <= 0 {
				return ""
			}
			return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
		},
	}

	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pages := []string{
		"browse.html",
		"detail.html",
		"mylist.html",
		"notfound.html",
	}

	out := &templates{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tpl, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := tpl.ParseFS(templateFS, "templates/"+page); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", page, err)
		}
		out.pages[page] = tpl
	}

	return out, nil
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	tpl, ok := s.templates.pages[name]
	if !ok {
		s.logger.Error().Str("template", name).Msg("Template not found")
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error().Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
