package accounts

import (
	"slices"
	"strings"
	"time"
)

// Account is the persisted user record, keyed by normalized email.
// CreatedAt is kept as text so records written by earlier servers, which
// used a zone-less ISO timestamp, still load.
type Account struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Disabilities []string `json:"disabilities"`
	CreatedAt    string   `json:"created_at"`
}

// User is the public projection of an Account. It never carries the hash.
type User struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Disabilities []string `json:"disabilities"`
}

func (a Account) User() User {
	tags := a.Disabilities
	if tags == nil {
		tags = []string{}
	}
	return User{
		Name:         a.Name,
		Email:        a.Email,
		Disabilities: tags,
	}
}

// Session is returned by signup and login. Token is empty when token
// issuance is disabled.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token,omitempty"`
}

type SignupCommand struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Disabilities []string `json:"disabilities"`
}

type LoginCommand struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateCommand changes only the fields that are present.
type UpdateCommand struct {
	Email        string    `json:"email"`
	Name         *string   `json:"name"`
	Disabilities *[]string `json:"disabilities"`
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeTags trims tags and drops blanks and duplicates, keeping the
// first occurrence order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
