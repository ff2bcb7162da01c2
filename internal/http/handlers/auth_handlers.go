package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/pixel-canvas/internal/http/web"
	"github.com/rogerio-castellano/pixel-canvas/internal/service"
	"github.com/rogerio-castellano/pixel-canvas/internal/validation"
)

type loginData struct {
	Next string
}

type resetData struct {
	Token string
}

// LoginPageHandler renders the login form.
func LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	if viewer(r).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, "login", web.Page{
		Title: "Log in",
		Data:  loginData{Next: r.URL.Query().Get("next")},
	})
}

// LoginHandler checks the submitted credentials and starts a session.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	if viewer(r).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	next := r.URL.Query().Get("next")
	form := formValues(r, "username", "password", "remember_me")
	page := web.Page{Title: "Log in", Form: form, Data: loginData{Next: next}}

	if errs := service.LoginSchema.Validate(validation.Values(form)); errs != nil {
		page.Errors = errs.Map()
		render(w, r, http.StatusBadRequest, "login", page)
		return
	}

	user, err := accountService.Authenticate(r.Context(), form["username"], form["password"])
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			page.Flashes = []web.Flash{{Category: "danger", Message: "Invalid username or password"}}
			render(w, r, http.StatusUnauthorized, "login", page)
			return
		}
		serverError(w, r, err)
		return
	}

	if err := sessions.Issue(w, user, form["remember_me"] != ""); err != nil {
		serverError(w, r, err)
		return
	}
	logger.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

// LogoutHandler ends the session and revokes its token.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := sessions.Clear(r.Context(), w, r); err != nil {
		logger.Error("failed to revoke session", "err", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterPageHandler renders the registration form.
func RegisterPageHandler(w http.ResponseWriter, r *http.Request) {
	if viewer(r).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, "register", web.Page{Title: "Register"})
}

// RegisterHandler creates an account and sends the visitor to the login page.
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if viewer(r).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	form := formValues(r, "username", "email", "password", "password2")
	user, err := accountService.Register(r.Context(), service.RegisterInput{
		Username:  form["username"],
		Email:     form["email"],
		Password:  form["password"],
		Password2: form["password2"],
	})
	if err != nil {
		if errs, ok := formErrors(err); ok {
			render(w, r, http.StatusBadRequest, "register", web.Page{Title: "Register", Form: form, Errors: errs})
			return
		}
		serverError(w, r, err)
		return
	}

	logger.Info("user registered", "user_id", user.ID)
	redirectWithFlash(w, r, "/login", "success", "Registration complete, please log in")
}

// ResetPasswordRequestPageHandler renders the form that asks for a username.
func ResetPasswordRequestPageHandler(w http.ResponseWriter, r *http.Request) {
	if viewer(r).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, "reset_password_request", web.Page{Title: "Reset password"})
}

// ResetPasswordRequestHandler emails a single-use reset link.
func ResetPasswordRequestHandler(w http.ResponseWriter, r *http.Request) {
	if viewer(r).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	form := formValues(r, "username")
	page := web.Page{Title: "Reset password", Form: form}

	user, token, err := accountService.RequestPasswordReset(r.Context(), form["username"])
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			page.Flashes = []web.Flash{{Category: "danger", Message: "No account is registered with that username"}}
			render(w, r, http.StatusNotFound, "reset_password_request", page)
			return
		}
		if errs, ok := formErrors(err); ok {
			page.Errors = errs
			render(w, r, http.StatusBadRequest, "reset_password_request", page)
			return
		}
		serverError(w, r, err)
		return
	}

	link := strings.TrimRight(baseURL, "/") + "/reset_password/" + url.PathEscape(token)
	if err := mailer.SendPasswordReset(r.Context(), user.Email, user.Username, link); err != nil {
		serverError(w, r, err)
		return
	}

	logger.Info("password reset requested", "user_id", user.ID)
	redirectWithFlash(w, r, "/login", "info", "Check your email for a link to reset your password")
}

// ResetPasswordPageHandler renders the new password form for a reset token.
func ResetPasswordPageHandler(w http.ResponseWriter, r *http.Request) {
	if viewer(r).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, "reset_password", web.Page{
		Title: "Reset password",
		Data:  resetData{Token: chi.URLParam(r, "token")},
	})
}

// ResetPasswordHandler consumes the reset token and stores the new password.
func ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if viewer(r).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	token := chi.URLParam(r, "token")
	form := formValues(r, "password", "password2")

	err := accountService.ResetPassword(r.Context(), token, service.ResetPasswordInput{
		Password:  form["password"],
		Password2: form["password2"],
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			redirectWithFlash(w, r, "/reset_password_request", "danger", "That reset link is invalid or has expired")
			return
		}
		if errs, ok := formErrors(err); ok {
			render(w, r, http.StatusBadRequest, "reset_password", web.Page{
				Title:  "Reset password",
				Errors: errs,
				Data:   resetData{Token: token},
			})
			return
		}
		serverError(w, r, err)
		return
	}

	redirectWithFlash(w, r, "/login", "success", "Your password has been reset, please log in")
}

// ProfilePageHandler renders the profile form with the current values.
func ProfilePageHandler(w http.ResponseWriter, r *http.Request) {
	user, err := accountService.User(r.Context(), viewer(r).UserID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, "profile", web.Page{
		Title: "Profile",
		Form:  map[string]string{"username": user.Username, "email": user.Email},
	})
}

// ProfileHandler saves a new username and email. The session is reissued so
// the navigation shows the new name; the previous one is revoked.
func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	form := formValues(r, "username", "email")
	user, err := accountService.UpdateProfile(r.Context(), viewer(r), service.ProfileInput{
		Username: form["username"],
		Email:    form["email"],
	})
	if err != nil {
		if errs, ok := formErrors(err); ok {
			render(w, r, http.StatusBadRequest, "profile", web.Page{Title: "Profile", Form: form, Errors: errs})
			return
		}
		serverError(w, r, err)
		return
	}

	if err := sessions.Reissue(r.Context(), w, r, user); err != nil {
		serverError(w, r, err)
		return
	}
	redirectWithFlash(w, r, "/profile", "success", "Profile updated")
}

// ChangePasswordPageHandler renders the change password form.
func ChangePasswordPageHandler(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "change_password", web.Page{Title: "Change password"})
}

// ChangePasswordHandler replaces the password after checking the current one.
func ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	form := formValues(r, "old_password", "new_password", "new_password2")
	err := accountService.ChangePassword(r.Context(), viewer(r), service.ChangePasswordInput{
		OldPassword:  form["old_password"],
		NewPassword:  form["new_password"],
		NewPassword2: form["new_password2"],
	})
	if err != nil {
		if errs, ok := formErrors(err); ok {
			render(w, r, http.StatusBadRequest, "change_password", web.Page{Title: "Change password", Errors: errs})
			return
		}
		serverError(w, r, err)
		return
	}
	redirectWithFlash(w, r, "/", "success", "Your password has been changed")
}

// formErrors turns validation and duplicate errors into per-field messages.
func formErrors(err error) (map[string]string, bool) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr.Errors.Map(), true
	}
	var dup *service.DuplicateError
	if errors.As(err, &dup) {
		return map[string]string{dup.Field: dup.Message()}, true
	}
	return nil, false
}
