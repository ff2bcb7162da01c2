package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rogerio-castellano/pixel-canvas/internal/access"
	"github.com/rogerio-castellano/pixel-canvas/internal/http/middleware"
	"github.com/rogerio-castellano/pixel-canvas/internal/http/web"
)

const flashCookieName = "flash"

// readJSON tries to read the body of a request and converts it into JSON
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1048576 // one megabyte
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must have only a single json value")
	}

	return nil
}

// writeJSON takes a response status code and arbitrary data and writes a json response to the client
func writeJSON(w http.ResponseWriter, status int, data any, headers ...http.Header) error {
	out, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("failed to write to response: %w", err)
	}

	return nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	if err := writeJSON(w, status, ErrorResponse{Error: message}); err != nil {
		logger.Error("failed to write JSON response", "err", err)
	}
}

func viewer(r *http.Request) access.Viewer {
	return middleware.GetViewer(r)
}

func canvasID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil && id > 0
}

// render fills in the per-request parts of page and writes it.
func render(w http.ResponseWriter, r *http.Request, status int, name string, page web.Page) {
	page.Viewer = viewer(r)
	page.Flashes = append(takeFlashes(w, r), page.Flashes...)
	if err := pages.Render(w, status, name, page); err != nil {
		serverError(w, r, err)
	}
}

func serverError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Error("request failed", "err", err, "path", r.URL.Path, "request_id", chimw.GetReqID(r.Context()))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// NotFoundHandler renders the 404 page.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusNotFound, "error", web.Page{
		Title: "Not found",
		Data:  "The page you are looking for does not exist.",
	})
}

// redirectWithFlash stores a one-shot message and redirects.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, to, category, message string) {
	addFlash(w, category, message)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func addFlash(w http.ResponseWriter, category, message string) {
	b, err := json.Marshal([]web.Flash{{Category: category, Message: message}})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func takeFlashes(w http.ResponseWriter, r *http.Request) []web.Flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Path: "/", MaxAge: -1})

	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var flashes []web.Flash
	if json.Unmarshal(b, &flashes) != nil {
		return nil
	}
	return flashes
}

// safeNext returns next if it is a local path, otherwise "/".
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// formValues collects the named form fields.
func formValues(r *http.Request, names ...string) map[string]string {
	values := make(map[string]string, len(names))
	for _, n := range names {
		values[n] = r.PostFormValue(n)
	}
	return values
}
