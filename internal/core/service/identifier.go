package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/campusdesk/portal-agent/internal/core/domain"
)

// IdentifierKind is how a login identifier was interpreted.
type IdentifierKind string

const (
	IdentifierEmail    IdentifierKind = "email"
	IdentifierPhone    IdentifierKind = "phone"
	IdentifierUsername IdentifierKind = "username"
)

var (
	phoneShape   = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]*$`)
	phoneNoise   = regexp.MustCompile(`[ ()\-]`)
	usernameRule = regexp.MustCompile(`^[\p{L}\p{N}._\-]+$`)
)

const minPhoneDigits = 7

var validate = validator.New()

// Identifier is a classified login identifier. Value is normalised for
// sending (trimmed, lower-cased email, phone without separators).
type Identifier struct {
	Kind  IdentifierKind
	Value string
}

// ClassifyIdentifier decides whether raw is an email, a phone number or a
// username, rejecting malformed emails and phone numbers.
func ClassifyIdentifier(raw string) (Identifier, error) {
	id := strings.TrimSpace(raw)
	if err := validate.Var(id, "required"); err != nil {
		return Identifier{}, fmt.Errorf("%w: identifier is required", domain.ErrValidation)
	}

	switch {
	case strings.Contains(id, "@"):
		email := strings.ToLower(id)
		if err := validate.Var(email, "email"); err != nil {
			return Identifier{}, fmt.Errorf("%w: identifier must be a valid email", domain.ErrValidation)
		}
		return Identifier{Kind: IdentifierEmail, Value: email}, nil

	case phoneShape.MatchString(id) && phoneDigits(id) >= minPhoneDigits:
		phone := phoneNoise.ReplaceAllString(id, "")
		e164 := phone
		if !strings.HasPrefix(e164, "+") {
			e164 = "+" + e164
		}
		if validate.Var(e164, "e164") != nil {
			return Identifier{}, fmt.Errorf("%w: identifier must be a valid phone number", domain.ErrValidation)
		}
		return Identifier{Kind: IdentifierPhone, Value: phone}, nil

	default:
		if !usernameRule.MatchString(id) {
			return Identifier{}, fmt.Errorf("%w: username may only contain letters, digits, '.', '_' and '-'", domain.ErrValidation)
		}
		return Identifier{Kind: IdentifierUsername, Value: id}, nil
	}
}

func phoneDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
