package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rogerio-castellano/pixel-canvas/internal/grid"
	"github.com/rogerio-castellano/pixel-canvas/internal/http/web"
	"github.com/rogerio-castellano/pixel-canvas/internal/models"
	"github.com/rogerio-castellano/pixel-canvas/internal/service"
)

type canvasListData struct {
	Heading  string
	Empty    string
	Canvases []models.Canvas
}

type createData struct {
	MaxDimension int
}

// IndexHandler lists the viewer's own canvases, or the public ones for
// anonymous visitors.
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)
	if !v.Authenticated() {
		listPublic(w, r, "Pixel Canvas", "index")
		return
	}

	canvases, err := canvasService.ListOwned(r.Context(), v)
	if err != nil {
		serverError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, "index", web.Page{
		Title: "My canvases",
		Data: canvasListData{
			Heading:  "My canvases",
			Empty:    "You have no canvases yet.",
			Canvases: canvases,
		},
	})
}

// PublicHandler lists every public canvas.
func PublicHandler(w http.ResponseWriter, r *http.Request) {
	listPublic(w, r, "Public gallery", "public")
}

func listPublic(w http.ResponseWriter, r *http.Request, title, page string) {
	canvases, err := canvasService.ListPublic(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, page, web.Page{
		Title: title,
		Data: canvasListData{
			Heading:  "Public canvases",
			Empty:    "Nobody has published a canvas yet.",
			Canvases: canvases,
		},
	})
}

// CreateCanvasPageHandler renders the new canvas form.
func CreateCanvasPageHandler(w http.ResponseWriter, r *http.Request) {
	size := strconv.Itoa(canvasService.DefaultSize())
	render(w, r, http.StatusOK, "create", web.Page{
		Title: "New canvas",
		Form:  map[string]string{"width": size, "height": size},
		Data:  createData{MaxDimension: canvasService.MaxDimension()},
	})
}

// CreateCanvasHandler stores a new blank canvas and opens it in the editor.
func CreateCanvasHandler(w http.ResponseWriter, r *http.Request) {
	form := formValues(r, "title", "width", "height", "is_public")
	in := service.CreateCanvasInput{
		Title:    form["title"],
		Width:    dimension(form["width"], canvasService.DefaultSize()),
		Height:   dimension(form["height"], canvasService.DefaultSize()),
		IsPublic: form["is_public"] == "on",
	}

	id, err := canvasService.Create(r.Context(), viewer(r), in)
	if err != nil {
		if errs, ok := formErrors(err); ok {
			render(w, r, http.StatusBadRequest, "create", web.Page{
				Title:  "New canvas",
				Form:   form,
				Errors: errs,
				Data:   createData{MaxDimension: canvasService.MaxDimension()},
			})
			return
		}
		serverError(w, r, err)
		return
	}

	logger.Info("canvas created", "canvas_id", id, "user_id", viewer(r).UserID)
	redirectWithFlash(w, r, "/canvas/"+strconv.Itoa(id)+"/edit", "success", "Canvas created")
}

// dimension parses a size field. Blank means the default; anything that is
// not a number becomes 0 so validation rejects it.
func dimension(value string, def int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

// ViewCanvasHandler shows a canvas to anyone allowed to see it.
func ViewCanvasHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := canvasID(r)
	if !ok {
		NotFoundHandler(w, r)
		return
	}

	c, err := canvasService.View(r.Context(), id, viewer(r))
	if err != nil {
		canvasPageError(w, r, err, "You are not allowed to view this canvas")
		return
	}
	render(w, r, http.StatusOK, "view", web.Page{Title: c.Title, Data: c})
}

// EditCanvasHandler opens the editor for the canvas owner.
func EditCanvasHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := canvasID(r)
	if !ok {
		NotFoundHandler(w, r)
		return
	}

	c, err := canvasService.Edit(r.Context(), id, viewer(r))
	if err != nil {
		canvasPageError(w, r, err, "You are not allowed to edit this canvas")
		return
	}
	render(w, r, http.StatusOK, "edit", web.Page{Title: "Edit - " + c.Title, Data: c})
}

// DeleteCanvasHandler removes a canvas owned by the viewer.
func DeleteCanvasHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := canvasID(r)
	if !ok {
		NotFoundHandler(w, r)
		return
	}

	if err := canvasService.Delete(r.Context(), id, viewer(r)); err != nil {
		canvasPageError(w, r, err, "You are not allowed to delete this canvas")
		return
	}

	logger.Info("canvas deleted", "canvas_id", id, "user_id", viewer(r).UserID)
	redirectWithFlash(w, r, "/", "success", "Canvas deleted")
}

func canvasPageError(w http.ResponseWriter, r *http.Request, err error, forbidden string) {
	var malformed *grid.MalformedGridError
	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFoundHandler(w, r)
	case errors.Is(err, service.ErrForbidden):
		redirectWithFlash(w, r, "/", "danger", forbidden)
	case errors.As(err, &malformed):
		logger.Error("stored canvas grid is malformed", "err", err, "path", r.URL.Path)
		http.Error(w, "canvas data is damaged", http.StatusInternalServerError)
	default:
		serverError(w, r, err)
	}
}

// GetCanvasHandler godoc
// @Summary Get a canvas with its grid
// @Description Public canvases are visible to everyone, private ones only to their owner.
// @Tags canvas
// @Produce json
// @Param id path int true "Canvas ID"
// @Success 200 {object} models.Canvas
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/canvas/{id} [get]
func GetCanvasHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := canvasID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "canvas not found")
		return
	}

	c, err := canvasService.View(r.Context(), id, viewer(r))
	if err != nil {
		canvasAPIError(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, c); err != nil {
		logger.Error("failed to write JSON response", "err", err)
	}
}

// UpdateCanvasHandler godoc
// @Summary Replace the grid of a canvas
// @Description The grid must have exactly the canvas height in rows and width in cells per row. Cells are color strings or null.
// @Tags canvas
// @Accept json
// @Produce json
// @Param id path int true "Canvas ID"
// @Param grid body UpdateCanvasRequest true "New grid"
// @Success 200 {object} UpdateCanvasResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/canvas/{id}/update [post]
func UpdateCanvasHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := canvasID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "canvas not found")
		return
	}

	var req UpdateCanvasRequest
	if err := readJSON(w, r, &req); err != nil || req.GridData == nil {
		writeError(w, http.StatusBadRequest, "invalid data")
		return
	}

	if _, err := canvasService.Update(r.Context(), id, viewer(r), req.GridData); err != nil {
		canvasAPIError(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, UpdateCanvasResult{Success: true}); err != nil {
		logger.Error("failed to write JSON response", "err", err)
	}
}

func canvasAPIError(w http.ResponseWriter, r *http.Request, err error) {
	var malformed *grid.MalformedGridError
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "canvas not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "not allowed")
	case errors.As(err, &malformed):
		writeError(w, http.StatusBadRequest, malformed.Error())
	default:
		logger.Error("canvas api failed", "err", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
