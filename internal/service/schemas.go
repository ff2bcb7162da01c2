package service

import (
	"regexp"
	"strconv"

	"github.com/rogerio-castellano/pixel-canvas/internal/validation"
)

const (
	DefaultCanvasTitle = "Untitled canvas"
	maxTitleLength     = 100

	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var (
	usernameRules = []validation.Rule{
		validation.Required("Please enter a username"),
		validation.Length(3, 20, "Username must be between 3 and 20 characters"),
		validation.Matches(usernameRe, "Username may only contain letters, digits and underscores"),
	}
	emailRules = []validation.Rule{
		validation.Required("Please enter an email address"),
		validation.Email("Please enter a valid email address"),
		validation.Length(0, 120, "Email address is too long"),
	}
)

func passwordRules(msg string) []validation.Rule {
	return []validation.Rule{
		validation.Required(msg),
		validation.Length(6, 0, "Password must be at least 6 characters"),
		validation.MaxBytes(maxPasswordBytes, "Password must be at most 72 bytes"),
	}
}

func confirmRules(field, msg string) []validation.Rule {
	return []validation.Rule{
		validation.Required(msg),
		validation.EqualTo(field, "The two passwords do not match"),
	}
}

var (
	LoginSchema = validation.Schema{
		{Name: "username", Rules: []validation.Rule{
			validation.Required("Please enter a username"),
			validation.Length(3, 20, "Username must be between 3 and 20 characters"),
		}},
		{Name: "password", Rules: passwordRules("Please enter a password")},
	}

	RegisterSchema = validation.Schema{
		{Name: "username", Rules: usernameRules},
		{Name: "email", Rules: emailRules},
		{Name: "password", Rules: passwordRules("Please enter a password")},
		{Name: "password2", Rules: confirmRules("password", "Please repeat the password")},
	}

	ResetRequestSchema = validation.Schema{
		{Name: "username", Rules: []validation.Rule{validation.Required("Please enter your username")}},
	}

	ResetPasswordSchema = validation.Schema{
		{Name: "password", Rules: passwordRules("Please enter a new password")},
		{Name: "password2", Rules: confirmRules("password", "Please repeat the new password")},
	}

	ChangePasswordSchema = validation.Schema{
		{Name: "old_password", Rules: []validation.Rule{validation.Required("Please enter your current password")}},
		{Name: "new_password", Rules: passwordRules("Please enter a new password")},
		{Name: "new_password2", Rules: confirmRules("new_password", "Please repeat the new password")},
	}

	SetPasswordSchema = validation.Schema{
		{Name: "password", Rules: passwordRules("Please enter a password")},
	}

	ProfileSchema = validation.Schema{
		{Name: "username", Rules: usernameRules},
		{Name: "email", Rules: emailRules},
	}
)

// CanvasSchema validates the create form for a given maximum dimension.
func CanvasSchema(maxDimension int) validation.Schema {
	sizeMsg := "Must be a whole number between 1 and " + strconv.Itoa(maxDimension)
	return validation.Schema{
		{Name: "title", Rules: []validation.Rule{
			validation.Length(0, maxTitleLength, "Title is too long"),
		}},
		{Name: "width", Rules: []validation.Rule{validation.IntRange(1, maxDimension, sizeMsg)}},
		{Name: "height", Rules: []validation.Rule{validation.IntRange(1, maxDimension, sizeMsg)}},
	}
}
