package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/sakif/shopping-list/internal/model"
	"github.com/sakif/shopping-list/internal/view"
)

// PageHandler renders the shopping-list page.
//
// WHY SERVER-SIDE?
// Every derived value on the page (search filter, category grouping, stats)
// is computed by package view from a fresh snapshot. The browser script only
// sends mutations to the JSON API and reloads, so the page is always the
// result of a full refetch.
type PageHandler struct {
	items       ItemService
	defaultUser string
	templates   *template.Template
	logger      *slog.Logger
}

// pageData is what list.html sees.
type pageData struct {
	Title      string
	UserID     string
	Page       view.Page
	Categories []model.Category
}

// NewPageHandler parses base.html and list.html from templateDir once.
//
// TEMPLATE COMPOSITION:
// base.html defines the document shell with {{template "content" .}};
// list.html fills it with {{define "content"}}.
func NewPageHandler(items ItemService, defaultUser, templateDir string, logger *slog.Logger) (*PageHandler, error) {
	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"emoji": model.CategoryEmoji,
	}).ParseFiles(
		filepath.Join(templateDir, "base.html"),
		filepath.Join(templateDir, "list.html"),
	)
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		items:       items,
		defaultUser: defaultUser,
		templates:   tmpl,
		logger:      logger,
	}, nil
}

// HandleList serves the page.
//
// HTTP: GET /?q=<search>&collapsed=<key>&collapsed=<key>
func (h *PageHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context(), h.defaultUser)
	if err != nil {
		h.logger.Error("failed to load items for page",
			slog.String("user_id", h.defaultUser),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Failed to fetch shopping items", http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	data := pageData{
		Title:      "Shopping List",
		UserID:     h.defaultUser,
		Page:       view.Build(items, query.Get("q"), view.ParseCollapsed(query["collapsed"])),
		Categories: model.Categories,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
