package handlers_test_suite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rogerio-castellano/pixel-canvas/internal/auth"
	"github.com/rogerio-castellano/pixel-canvas/internal/grid"
	handler "github.com/rogerio-castellano/pixel-canvas/internal/http/handlers"
	mw "github.com/rogerio-castellano/pixel-canvas/internal/http/middleware"
	"github.com/rogerio-castellano/pixel-canvas/internal/http/router"
	"github.com/rogerio-castellano/pixel-canvas/internal/repo"
	"github.com/rogerio-castellano/pixel-canvas/internal/service"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "secret123"

var (
	userRepo   *repo.InMemoryUserRepository
	canvasRepo *repo.InMemoryCanvasRepository
	tokens     *auth.MemoryStore
	accounts   *service.AccountService
	canvases   *service.CanvasService
	mails      = &captureMailer{}
)

func init() {
	setupTestRepos()
}

func setupTestRepos() {
	logger := log.New(io.Discard)
	handler.SetLogger(logger)
	mw.SetLogger(logger)

	userRepo = repo.NewInMemoryUserRepository()
	canvasRepo = repo.NewInMemoryCanvasRepository(userRepo)
	tokens = auth.NewMemoryStore()

	accounts = service.NewAccountService(userRepo, tokens, 30*time.Minute)
	accounts.SetHashCost(bcrypt.MinCost)
	handler.SetAccountService(accounts)

	canvases = service.NewCanvasService(canvasRepo, 64, 16)
	handler.SetCanvasService(canvases)

	statsRepo := repo.NewInMemoryStatsRepository()
	statsRepo.SetRepositories(userRepo, canvasRepo)
	handler.SetStatsRepo(statsRepo)

	sessions := auth.NewSessionManager(auth.SessionConfig{
		Secret:      []byte("test-secret"),
		TTL:         time.Hour,
		RememberTTL: 24 * time.Hour,
	}, tokens)
	handler.SetSessionManager(sessions)
	mw.SetSessionManager(sessions)

	handler.SetMailer(mails)
	handler.SetBaseURL("http://pixels.test")
}

func clearAll() {
	canvasRepo.Clear()
	userRepo.Clear()
	mails.reset()
}

type captureMailer struct {
	mu    sync.Mutex
	links []string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, to, username, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, link)
	return nil
}

func (m *captureMailer) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.links) == 0 {
		return ""
	}
	return m.links[len(m.links)-1]
}

func (m *captureMailer) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = nil
}

func newRouter() http.Handler {
	return router.NewRouter()
}

func registerUser(username string) int {
	u, err := accounts.Register(context.Background(), service.RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  testPassword,
		Password2: testPassword,
	})
	if err != nil {
		panic(fmt.Sprintf("error registering %s: %v", username, err))
	}
	return u.ID
}

// login posts the login form and returns the session cookies.
func login(r http.Handler, username, password string) []*http.Cookie {
	w := postForm(r, "/login", url.Values{"username": {username}, "password": {password}})
	if w.Code != http.StatusSeeOther {
		panic(fmt.Sprintf("login as %s failed: %d", username, w.Code))
	}
	return sessionCookies(w)
}

func sessionCookies(w *httptest.ResponseRecorder) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			out = append(out, c)
		}
	}
	return out
}

func get(r http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postForm(r http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSON(r http.Handler, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// createCanvas creates a canvas through the form and returns its id.
func createCanvas(r http.Handler, cookies []*http.Cookie, title string, width, height int, public bool) int {
	form := url.Values{
		"title":  {title},
		"width":  {fmt.Sprint(width)},
		"height": {fmt.Sprint(height)},
	}
	if public {
		form.Set("is_public", "on")
	}
	w := postForm(r, "/create", form, cookies...)
	if w.Code != http.StatusSeeOther {
		panic(fmt.Sprintf("canvas creation failed: %d %s", w.Code, w.Body.String()))
	}

	var id int
	if _, err := fmt.Sscanf(w.Header().Get("Location"), "/canvas/%d/edit", &id); err != nil {
		panic(fmt.Sprintf("unexpected redirect %q", w.Header().Get("Location")))
	}
	return id
}

// cellAt returns the color at column x, row y, or "" for an empty cell.
func cellAt(g grid.Grid, x, y int) string {
	if c := g[y][x]; c != nil {
		return *c
	}
	return ""
}
