// Package handler contains the HTTP handlers: the JSON API for shopping items
// and the server-rendered list page.
//
// Handlers parse requests, call the service and write responses. They hold
// no business rules; the only decision made here is which user a request is
// for when it names none.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/model"
	"github.com/sakif/shopping-list/internal/repository"
	"github.com/sakif/shopping-list/internal/service"
)

// ItemService is the slice of service.ItemService the handlers use.
type ItemService interface {
	List(ctx context.Context, userID string) ([]model.Item, error)
	Create(ctx context.Context, in service.CreateItemInput) (*model.Item, error)
	Update(ctx context.Context, id int64, update repository.ItemUpdate) (*model.Item, error)
	Toggle(ctx context.Context, id int64) (*model.Item, error)
	Delete(ctx context.Context, id int64) error
	ResetAll(ctx context.Context, userID string) ([]model.Item, error)
	Ping(ctx context.Context) error
}

// ItemHandler serves /api/shopping-items.
type ItemHandler struct {
	items       ItemService
	defaultUser string
	logger      *slog.Logger
}

// NewItemHandler creates an ItemHandler. defaultUser is the identity used
// whenever a request does not supply a userId.
func NewItemHandler(items ItemService, defaultUser string, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		items:       items,
		defaultUser: defaultUser,
		logger:      logger,
	}
}

// Routes registers the item endpoints on r.
//
// ROUTE ORDER:
// /reset is registered before the /{id} routes. chi already prefers the
// static segment, but keeping the order explicit means "reset" can never be
// parsed as an id.
func (h *ItemHandler) Routes(r chi.Router) {
	r.Get("/shopping-items", h.HandleList)
	r.Post("/shopping-items", h.HandleCreate)
	r.Patch("/shopping-items/reset", h.HandleReset)
	r.Patch("/shopping-items/{id}/toggle", h.HandleToggle)
	r.Patch("/shopping-items/{id}", h.HandleUpdate)
	r.Delete("/shopping-items/{id}", h.HandleDelete)
}

// userID returns the ?userId= query value or, when it is blank, the default
// user.
func (h *ItemHandler) userID(r *http.Request) string {
	if u := strings.TrimSpace(r.URL.Query().Get("userId")); u != "" {
		return u
	}
	return h.defaultUser
}

// parseID reads the {id} path segment. A non-integer is apperror.ErrInvalidID,
// rejected before the service is called.
func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.InvalidID(raw)
	}
	return id, nil
}

// HandleList returns every item of the requested user.
//
// HTTP: GET /api/shopping-items?userId=<id>
func (h *ItemHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context(), h.userID(r))
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch shopping items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// createRequest mirrors the accepted create body. Pointers distinguish a
// missing field from an empty one.
type createRequest struct {
	Name      *string `json:"name"`
	Quantity  *string `json:"quantity"`
	Category  *string `json:"category"`
	Completed *bool   `json:"completed"`
	UserID    *string `json:"userId"`
}

// HandleCreate stores a new item.
//
// HTTP: POST /api/shopping-items
// REQUEST BODY: {"name": "Milk", "quantity": "1", "category": "dairy", "completed"?: false, "userId"?: "user1"}
//
// id, createdAt and updatedAt in the body are ignored.
func (h *ItemHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(r, &req); err != nil {
		if errors.Is(err, io.EOF) {
			err = apperror.ValidationFailed("body", "request body is required")
		}
		h.writeError(w, r, err, "Failed to create shopping item")
		return
	}

	in := service.CreateItemInput{UserID: h.defaultUser}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Quantity != nil {
		in.Quantity = *req.Quantity
	}
	if req.Category != nil {
		in.Category = *req.Category
	}
	if req.Completed != nil {
		in.Completed = *req.Completed
	}
	if req.UserID != nil {
		if u := strings.TrimSpace(*req.UserID); u != "" {
			in.UserID = u
		}
	}

	item, err := h.items.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err, "Failed to create shopping item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// updateRequest lists the only fields an update may change.
type updateRequest struct {
	Name      *string `json:"name"`
	Quantity  *string `json:"quantity"`
	Category  *string `json:"category"`
	Completed *bool   `json:"completed"`
}

// HandleUpdate applies a partial update.
//
// HTTP: PATCH /api/shopping-items/{id}
// An empty body is an empty update: nothing changes but updatedAt.
func (h *ItemHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, r, err, "Failed to update shopping item")
		return
	}

	var req updateRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, r, err, "Failed to update shopping item")
		return
	}

	item, err := h.items.Update(r.Context(), id, repository.ItemUpdate{
		Name:      req.Name,
		Quantity:  req.Quantity,
		Category:  req.Category,
		Completed: req.Completed,
	})
	if err != nil {
		h.writeError(w, r, err, "Failed to update shopping item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// HandleToggle flips an item's completed flag.
//
// HTTP: PATCH /api/shopping-items/{id}/toggle
func (h *ItemHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, r, err, "Failed to toggle shopping item")
		return
	}

	item, err := h.items.Toggle(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Failed to toggle shopping item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// HandleDelete removes an item.
//
// HTTP: DELETE /api/shopping-items/{id} → {"success": true}
func (h *ItemHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, r, err, "Failed to delete shopping item")
		return
	}

	if err := h.items.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err, "Failed to delete shopping item")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleReset clears completion on all of a user's items.
//
// HTTP: PATCH /api/shopping-items/reset?userId=<id>
func (h *ItemHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.ResetAll(r.Context(), h.userID(r))
	if err != nil {
		h.writeError(w, r, err, "Failed to reset shopping list")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleHealth reports whether the store answers.
//
// HTTP: GET /healthz
func (h *ItemHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.items.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// decodeBody decodes a JSON body into dst. An empty body is io.EOF; a body
// that is not valid JSON, or has a field of the wrong type, is a validation
// error naming the field when it can.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperror.ValidationFailed(typeErr.Field,
			fmt.Sprintf("%s must be a %s", typeErr.Field, jsonKind(typeErr.Type.Kind().String())))
	}
	return apperror.ValidationFailed("body", "request body must be valid JSON")
}

// jsonKind names a Go kind the way a JSON client thinks about it.
func jsonKind(kind string) string {
	switch kind {
	case "bool":
		return "boolean"
	case "ptr":
		return "value"
	default:
		return kind
	}
}
