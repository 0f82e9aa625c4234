package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/najdeno/internal/filter"
	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	ImageURL    string `json:"imageUrl"`
	Type        string `json:"type"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// Create handles POST /api/items. The reporter is always the caller.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	var req createItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, errInvalidBody())
		return
	}

	n, err := req.validate()
	if err != nil {
		writeError(w, r, err)
		return
	}
	n.UserID = user.ID

	item, err := store.CreateItem(r.Context(), h.DB, n)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("item created", "item", item.ID, "type", item.Type, "user", user.ID)
	jsonResponse(w, http.StatusCreated, item)
}

// validate checks required fields first, then the value of each field.
func (req createItemRequest) validate() (store.NewItem, error) {
	n := store.NewItem{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Location:    strings.TrimSpace(req.Location),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Type:        strings.TrimSpace(req.Type),
	}
	date := strings.TrimSpace(req.Date)

	if n.Title == "" || n.Description == "" || n.Location == "" || date == "" || n.Type == "" {
		return n, missingField("title, description, location, date, and type are required")
	}
	if !model.ValidItemType(n.Type) {
		return n, invalidValue("type must be 'lost' or 'found'")
	}

	parsed, err := model.ParseDate(date)
	if err != nil {
		return n, invalidValue("date must be YYYY-MM-DD or RFC 3339")
	}
	n.Date = parsed

	if n.Category == "" {
		n.Category = model.CategoryOther
	} else if !model.ValidCategory(n.Category) {
		return n, invalidValue("category must be one of Documents, Electronics, Accessories, Clothing, Other")
	}
	return n, nil
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	pred := filter.Build(filter.ParamsFromQuery(r.URL.Query()))

	items, err := store.ListItems(r.Context(), h.DB, pred)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := store.GetItem(r.Context(), h.DB, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if item == nil {
		writeError(w, r, errItemNotFound())
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// UpdateStatus handles PUT /api/items/{id}/status.
func (h *ItemsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, errInvalidBody())
		return
	}
	if !model.ValidItemStatus(req.Status) {
		writeError(w, r, invalidValue("status must be 'Lost', 'Found', or 'Returned'"))
		return
	}

	existing, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if existing == nil {
		writeError(w, r, errItemNotFound())
		return
	}

	item, err := store.UpdateItemStatus(r.Context(), h.DB, id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if item == nil {
		writeError(w, r, errItemNotFound())
		return
	}

	slog.Info("item status changed", "item", item.ID,
		"from", existing.Status, "to", item.Status, "by", CurrentUser(r.Context()).ID)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ok, err := store.DeleteItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, errItemNotFound())
		return
	}

	slog.Info("item deleted", "item", id, "by", CurrentUser(r.Context()).ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadImage handles PUT /api/items/{id}/image. Only the reporter or an
// administrator may change an item's photo.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	id := chi.URLParam(r, "id")

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if item == nil {
		writeError(w, r, errItemNotFound())
		return
	}
	if item.UserID != user.ID && !user.IsAdmin() {
		writeError(w, r, forbidden("only the reporter or an administrator may change this photo"))
		return
	}

	// Room for the multipart envelope around a maximum-size photo.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+64<<10)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		writeError(w, r, invalidValue("file too large or invalid multipart form"))
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, missingField("image file required"))
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	url := "/api/items/" + item.ID + "/image"
	ok, err := store.SetItemImage(r.Context(), h.DB, item.ID, photo.Data, photo.MIME, url)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, errItemNotFound())
		return
	}

	slog.Info("item photo uploaded", "item", item.ID, "bytes", len(photo.Data), "by", user.ID)
	item.ImageURL = url
	jsonResponse(w, http.StatusOK, item)
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetItemImage(r.Context(), h.DB, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if data == nil {
		writeError(w, r, notFound("no image"))
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(data)
}
