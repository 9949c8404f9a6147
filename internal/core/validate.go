package core

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"lifelessons-backend-go/internal/models"
)

// validate is shared across goroutines.
var validate = validator.New()

const maxDocIDLength = 1500

// validateID rejects identifiers that cannot name a document. Firestore IDs
// must be valid UTF-8, at most 1500 bytes, contain no '/', and must not be "."
// or "..", nor match __.*__.
func validateID(kind, id string) error {
	switch {
	case id == "", id == ".", id == "..":
		return InvalidInputError("invalid " + kind + " id")
	case len(id) > maxDocIDLength, !utf8.ValidString(id), strings.Contains(id, "/"):
		return InvalidInputError("invalid " + kind + " id")
	case len(id) >= 4 && strings.HasPrefix(id, "__") && strings.HasSuffix(id, "__"):
		return InvalidInputError("invalid " + kind + " id")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return InvalidInputError("email is required")
	}
	// A bare address only: display-name forms like "Name <a@b.c>" are rejected.
	if err := validate.Var(email, "email"); err != nil {
		return InvalidInputError("invalid email address")
	}
	return nil
}

func validVisibility(v string) bool {
	return v == models.VisibilityPublic || v == models.VisibilityPrivate
}

func validAccessLevel(v string) bool {
	return v == models.AccessFree || v == models.AccessPremium
}

func validRole(role string) bool {
	return role == models.RoleUser || role == models.RoleAdmin
}
