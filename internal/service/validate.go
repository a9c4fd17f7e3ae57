package service

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kotbarbarossa/yamdb-final/internal/policy"
)

const (
	ReservedUsername = "me"

	maxUsernameLen = 150
	maxEmailLen    = 254
	maxPersonName  = 150
	maxNameLen     = 256
	maxSlugLen     = 50

	MinScore = 1
	MaxScore = 10
)

var (
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// now is replaced in tests.
var now = time.Now

func validateUsername(ve *ValidationError, username string) {
	switch {
	case username == "":
		ve.Add("username", "this field is required")
	case username == ReservedUsername:
		ve.Add("username", fmt.Sprintf("username %q is reserved", ReservedUsername))
	case utf8.RuneCountInString(username) > maxUsernameLen:
		ve.Add("username", fmt.Sprintf("ensure this field has no more than %d characters", maxUsernameLen))
	case !usernameRe.MatchString(username):
		ve.Add("username", "letters, digits and @/./+/-/_ only")
	}
}

func validateEmail(ve *ValidationError, email string) {
	switch {
	case email == "":
		ve.Add("email", "this field is required")
	case len(email) > maxEmailLen:
		ve.Add("email", fmt.Sprintf("ensure this field has no more than %d characters", maxEmailLen))
	default:
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email || !strings.Contains(addr.Address, "@") {
			ve.Add("email", "enter a valid email address")
		}
	}
}

func validateRole(ve *ValidationError, role string) {
	if !policy.Role(role).Valid() {
		ve.Add("role", fmt.Sprintf("%q is not a valid choice", role))
	}
}

func validateMaxLen(ve *ValidationError, field, v string, max int) {
	if utf8.RuneCountInString(v) > max {
		ve.Add(field, fmt.Sprintf("ensure this field has no more than %d characters", max))
	}
}

func validateName(ve *ValidationError, name string) {
	if strings.TrimSpace(name) == "" {
		ve.Add("name", "this field is required")
		return
	}
	validateMaxLen(ve, "name", name, maxNameLen)
}

func validateSlug(ve *ValidationError, slug string) {
	switch {
	case slug == "":
		ve.Add("slug", "this field is required")
	case len(slug) > maxSlugLen:
		ve.Add("slug", fmt.Sprintf("ensure this field has no more than %d characters", maxSlugLen))
	case !slugRe.MatchString(slug):
		ve.Add("slug", "letters, digits, hyphens and underscores only")
	}
}

func validateYear(ve *ValidationError, year *int) {
	if year != nil && *year > now().Year() {
		ve.Add("year", "year cannot be in the future")
	}
}

func validateText(ve *ValidationError, text string) {
	if strings.TrimSpace(text) == "" {
		ve.Add("text", "this field is required")
	}
}

func checkScore(score int) error {
	if score < MinScore || score > MaxScore {
		return fieldError(ErrInvalidScore, "score", fmt.Sprintf("score must be between %d and %d", MinScore, MaxScore))
	}
	return nil
}

func equalFoldEmail(a, b string) bool {
	return strings.EqualFold(a, b)
}
