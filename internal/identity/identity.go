// Package identity determines who the current user is for the purpose of
// owning checkouts.
package identity

import (
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/Iron-Ham/dwcheck/internal/config"
	"github.com/Iron-Ham/dwcheck/internal/errors"
)

// Identity is the acting user. Username is always lower-case.
type Identity struct {
	Username string
	Email    string
}

// LookupFunc returns the operating-system account name.
type LookupFunc func() (string, error)

// OSUsername returns the current OS account name, falling back to $USER or
// %USERNAME% when the user database is unavailable.
func OSUsername() (string, error) {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username, nil
	}
	for _, env := range []string{"USER", "USERNAME"} {
		if v := os.Getenv(env); v != "" {
			return v, nil
		}
	}
	return "", errors.ErrNoIdentity
}

// Resolve builds the session identity from cfg, consulting lookup only when no
// username is configured. A nil lookup means OSUsername.
func Resolve(cfg config.IdentityConfig, lookup LookupFunc) (Identity, error) {
	name := cfg.Username
	if name == "" {
		if lookup == nil {
			lookup = OSUsername
		}
		osName, err := lookup()
		if err != nil {
			return Identity{}, errors.NewConfigError("cannot determine username", err).WithKey("identity.username")
		}
		name = osName
	}

	name = Normalize(name)
	if name == "" {
		return Identity{}, errors.NewConfigError("username is empty", errors.ErrNoIdentity).WithKey("identity.username")
	}

	email := strings.TrimSpace(cfg.Email)
	if email == "" {
		email = name
		if domain := strings.TrimSpace(cfg.EmailDomain); domain != "" {
			email = fmt.Sprintf("%s@%s", name, domain)
		}
	}

	return Identity{Username: name, Email: strings.ToLower(email)}, nil
}

// Normalize strips a Windows "DOMAIN\" prefix, trims whitespace and lower-cases.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, `\`); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

// Owns reports whether owner names this identity, ignoring case.
func (id Identity) Owns(owner string) bool {
	return owner != "" && strings.EqualFold(strings.TrimSpace(owner), id.Username)
}

// String returns the username.
func (id Identity) String() string {
	return id.Username
}
