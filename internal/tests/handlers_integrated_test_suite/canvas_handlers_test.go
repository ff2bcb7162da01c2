package handlers_integrated_test_suite

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/rogerio-castellano/pixel-canvas/internal/models"
)

func TestCanvasLifecycle(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()
	alice := register(t, r, "alice")
	bob := register(t, r, "bob")

	w := postForm(r, "/create", url.Values{"title": {"Lifecycle"}, "width": {"3"}, "height": {"2"}, "is_public": {"on"}}, alice...)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("create: expected 303, got %d", w.Code)
	}
	var id int
	fmt.Sscanf(w.Header().Get("Location"), "/canvas/%d/edit", &id)
	apiPath := fmt.Sprintf("/api/canvas/%d", id)

	w = request(r, http.MethodPost, apiPath+"/update", `{"gridData":[["#000",null,null],[null,null,"#fff"]]}`, bob...)
	if w.Code != http.StatusForbidden {
		t.Fatalf("update by other user: expected 403, got %d", w.Code)
	}

	w = request(r, http.MethodPost, apiPath+"/update", `{"gridData":[["#000",null],[null,null]]}`, alice...)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed update: expected 400, got %d", w.Code)
	}

	w = request(r, http.MethodPost, apiPath+"/update", `{"gridData":[["#000",null,null],[null,null,"#fff"]]}`, alice...)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = request(r, http.MethodGet, apiPath, "")
	var c models.Canvas
	if err := json.NewDecoder(w.Body).Decode(&c); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if got := cellAt(c.Grid, 2, 1); got != "#fff" {
		t.Errorf("expected #fff at (2,1), got %q", got)
	}
	if c.OwnerName != "alice" {
		t.Errorf("expected owner alice, got %q", c.OwnerName)
	}

	request(r, http.MethodGet, fmt.Sprintf("/canvas/%d/delete", id), "", bob...)
	if w := request(r, http.MethodGet, apiPath, ""); w.Code != http.StatusOK {
		t.Fatalf("delete by other user must keep the canvas, got %d", w.Code)
	}
	if w := request(r, http.MethodGet, fmt.Sprintf("/canvas/%d/delete", id), "", alice...); w.Code != http.StatusSeeOther {
		t.Errorf("delete: expected 303, got %d", w.Code)
	}
	if w := request(r, http.MethodGet, apiPath, ""); w.Code != http.StatusNotFound {
		t.Errorf("after delete: expected 404, got %d", w.Code)
	}
}

func TestConcurrentUpdatesLeaveAWholeGrid(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()
	alice := register(t, r, "alice")

	w := postForm(r, "/create", url.Values{"width": {"4"}, "height": {"1"}}, alice...)
	var id int
	fmt.Sscanf(w.Header().Get("Location"), "/canvas/%d/edit", &id)
	path := fmt.Sprintf("/api/canvas/%d/update", id)

	colors := []string{"#111", "#222", "#333", "#444", "#555", "#666"}
	var wg sync.WaitGroup
	for _, color := range colors {
		wg.Add(1)
		go func(color string) {
			defer wg.Done()
			body := fmt.Sprintf(`{"gridData":[["%[1]s","%[1]s","%[1]s","%[1]s"]]}`, color)
			if w := request(r, http.MethodPost, path, body, alice...); w.Code != http.StatusOK {
				t.Errorf("update %s: expected 200, got %d", color, w.Code)
			}
		}(color)
	}
	wg.Wait()

	w = request(r, http.MethodGet, fmt.Sprintf("/api/canvas/%d", id), "")
	var c models.Canvas
	json.NewDecoder(w.Body).Decode(&c)

	// The stored grid must be exactly one of the submitted grids.
	first := cellAt(c.Grid, 0, 0)
	for x := 1; x < 4; x++ {
		if cellAt(c.Grid, x, 0) != first {
			t.Fatalf("mixed grid after concurrent updates: %v", c.Grid)
		}
	}
	if !strings.HasPrefix(first, "#") {
		t.Errorf("unexpected color %q", first)
	}
}

func TestDuplicateRegistrationUsesConstraint(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()
	register(t, r, "alice")

	w := postForm(r, "/register", url.Values{
		"username":  {"alice"},
		"email":     {"other@example.com"},
		"password":  {testPassword},
		"password2": {testPassword},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "username is already taken") {
		t.Error("expected the username field error")
	}

	w = postForm(r, "/register", url.Values{
		"username":  {"alice2"},
		"email":     {"alice@example.com"},
		"password":  {testPassword},
		"password2": {testPassword},
	})
	if !strings.Contains(w.Body.String(), "email is already registered") {
		t.Error("expected the email field error")
	}
}

func TestStatsAgainstPostgres(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()
	alice := register(t, r, "alice")
	postForm(r, "/create", url.Values{"width": {"2"}, "height": {"2"}, "is_public": {"on"}}, alice...)
	postForm(r, "/create", url.Values{"width": {"2"}, "height": {"2"}}, alice...)

	w := request(r, http.MethodGet, "/api/stats", "")
	var stats map[string]int
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if stats["users"] != 1 || stats["canvases"] != 2 || stats["public_canvases"] != 1 || stats["private_canvases"] != 1 {
		t.Errorf("unexpected stats %v", stats)
	}
}
