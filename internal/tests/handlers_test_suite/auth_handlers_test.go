package handlers_test_suite

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestRegisterHandler_Valid(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()

	if w := get(r, "/register"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for the register form, got %d", w.Code)
	}

	w := postForm(r, "/register", url.Values{
		"username":  {"alice"},
		"email":     {"alice@example.com"},
		"password":  {testPassword},
		"password2": {testPassword},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
	if cookies := login(r, "alice", testPassword); len(cookies) == 0 {
		t.Error("expected a session cookie after login")
	}
}

func TestRegisterHandler_Invalid(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()
	registerUser("taken")

	tests := []struct {
		name       string
		form       url.Values
		expectText string
	}{
		{
			name:       "Duplicate username",
			form:       url.Values{"username": {"taken"}, "email": {"new@example.com"}, "password": {testPassword}, "password2": {testPassword}},
			expectText: "username is already taken",
		},
		{
			name:       "Duplicate email",
			form:       url.Values{"username": {"fresh"}, "email": {"taken@example.com"}, "password": {testPassword}, "password2": {testPassword}},
			expectText: "email is already registered",
		},
		{
			name:       "Passwords differ",
			form:       url.Values{"username": {"fresh"}, "email": {"fresh@example.com"}, "password": {testPassword}, "password2": {"other-pass"}},
			expectText: "passwords do not match",
		},
		{
			name:       "Bad username",
			form:       url.Values{"username": {"no spaces!"}, "email": {"fresh@example.com"}, "password": {testPassword}, "password2": {testPassword}},
			expectText: "letters, digits and underscores",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postForm(r, "/register", tt.form)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.expectText) {
				t.Errorf("expected body to contain %q", tt.expectText)
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()
	registerUser("alice")

	w := postForm(r, "/login", url.Values{"username": {"alice"}, "password": {"wrong-pass"}})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a wrong password, got %d", w.Code)
	}
	if len(sessionCookies(w)) != 0 {
		t.Error("expected no session cookie for a failed login")
	}

	w = postForm(r, "/login?next=/create", url.Values{"username": {"alice"}, "password": {testPassword}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/create" {
		t.Errorf("expected redirect to /create, got %q", loc)
	}
}

func TestLoginHandler_RejectsForeignNext(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()
	registerUser("alice")

	for _, next := range []string{"//evil.example", "https://evil.example", "evil"} {
		w := postForm(r, "/login?next="+url.QueryEscape(next), url.Values{"username": {"alice"}, "password": {testPassword}})
		if loc := w.Header().Get("Location"); loc != "/" {
			t.Errorf("next=%q: expected redirect to /, got %q", next, loc)
		}
	}
}

func TestLoginHandler_RememberMe(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()
	registerUser("alice")

	w := postForm(r, "/login", url.Values{"username": {"alice"}, "password": {testPassword}, "remember_me": {"on"}})
	cookies := sessionCookies(w)
	if len(cookies) != 1 {
		t.Fatalf("expected one session cookie, got %d", len(cookies))
	}
	if cookies[0].MaxAge <= 0 {
		t.Errorf("expected a persistent cookie, got MaxAge %d", cookies[0].MaxAge)
	}
	if !cookies[0].HttpOnly {
		t.Error("expected the session cookie to be HttpOnly")
	}
}

func TestRequiredPagesRedirectToLogin(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()

	for _, path := range []string{"/create", "/profile", "/change_password", "/logout", "/canvas/1/edit", "/canvas/1/delete"} {
		w := get(r, path)
		if w.Code != http.StatusSeeOther {
			t.Errorf("%s: expected 303, got %d", path, w.Code)
			continue
		}
		want := "/login?next=" + url.QueryEscape(path)
		if loc := w.Header().Get("Location"); loc != want {
			t.Errorf("%s: expected redirect to %q, got %q", path, want, loc)
		}
	}
}

func TestLogoutHandler_RevokesSession(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()
	registerUser("alice")
	cookies := login(r, "alice", testPassword)

	if w := get(r, "/create", cookies...); w.Code != http.StatusOK {
		t.Fatalf("expected 200 before logout, got %d", w.Code)
	}

	if w := get(r, "/logout", cookies...); w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 from logout, got %d", w.Code)
	}

	// The old cookie must no longer authenticate even if the browser kept it.
	if w := get(r, "/create", cookies...); w.Code != http.StatusSeeOther {
		t.Errorf("expected the revoked session to be redirected, got %d", w.Code)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()
	registerUser("alice")

	w := postForm(r, "/reset_password_request", url.Values{"username": {"nobody"}})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown user, got %d", w.Code)
	}

	w = postForm(r, "/reset_password_request", url.Values{"username": {"alice"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	link := mails.last()
	if !strings.HasPrefix(link, "http://pixels.test/reset_password/") {
		t.Fatalf("unexpected reset link %q", link)
	}
	path := strings.TrimPrefix(link, "http://pixels.test")

	if w := get(r, path); w.Code != http.StatusOK {
		t.Fatalf("expected the reset form, got %d", w.Code)
	}

	w = postForm(r, path, url.Values{"password": {"brand-new"}, "password2": {"brand-new"}})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", w.Code, w.Header().Get("Location"))
	}
	login(r, "alice", "brand-new")

	w = postForm(r, path, url.Values{"password": {"again-new"}, "password2": {"again-new"}})
	if loc := w.Header().Get("Location"); loc != "/reset_password_request" {
		t.Errorf("expected a used token to be rejected, got redirect %q", loc)
	}
}

func TestChangePasswordAndProfile(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()
	registerUser("alice")
	registerUser("bob")
	cookies := login(r, "alice", testPassword)

	w := postForm(r, "/change_password", url.Values{
		"old_password":  {"not-it"},
		"new_password":  {"changed1"},
		"new_password2": {"changed1"},
	}, cookies...)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a wrong current password, got %d", w.Code)
	}

	w = postForm(r, "/change_password", url.Values{
		"old_password":  {testPassword},
		"new_password":  {"changed1"},
		"new_password2": {"changed1"},
	}, cookies...)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	login(r, "alice", "changed1")

	w = postForm(r, "/profile", url.Values{"username": {"bob"}, "email": {"alice@example.com"}}, cookies...)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a taken username, got %d", w.Code)
	}

	w = postForm(r, "/profile", url.Values{"username": {"alice_renamed"}, "email": {"alice@example.com"}}, cookies...)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	renewed := sessionCookies(w)
	if len(renewed) == 0 {
		t.Fatal("expected the session to be reissued")
	}
	page := get(r, "/profile", renewed...)
	if !strings.Contains(page.Body.String(), "alice_renamed") {
		t.Error("expected the profile page to show the new username")
	}
}

func TestProfileHandler_ReissueKeepsRememberedSession(t *testing.T) {
	t.Cleanup(clearAll)
	r := newRouter()
	registerUser("alice")

	w := postForm(r, "/login", url.Values{"username": {"alice"}, "password": {testPassword}, "remember_me": {"on"}})
	old := sessionCookies(w)
	if len(old) != 1 {
		t.Fatalf("expected one session cookie, got %d", len(old))
	}

	w = postForm(r, "/profile", url.Values{"username": {"alice_renamed"}, "email": {"alice@example.com"}}, old...)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	renewed := sessionCookies(w)
	if len(renewed) != 1 {
		t.Fatalf("expected one reissued session cookie, got %d", len(renewed))
	}
	if renewed[0].MaxAge <= 0 {
		t.Errorf("expected the reissued cookie to stay persistent, got MaxAge %d", renewed[0].MaxAge)
	}

	if w := get(r, "/create", renewed...); w.Code != http.StatusOK {
		t.Errorf("expected the reissued session to authenticate, got %d", w.Code)
	}
	if w := get(r, "/create", old...); w.Code != http.StatusSeeOther {
		t.Errorf("expected the replaced session to be revoked, got %d", w.Code)
	}
}
