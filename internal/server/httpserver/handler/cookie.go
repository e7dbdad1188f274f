package handler

import (
	"net/http"

	"github.com/yndnr/sesskeep-go/pkg/seal"
	"github.com/yndnr/sesskeep-go/pkg/sessid"
)

// cookieSealContext binds sealed cookie values to their purpose so a
// ciphertext lifted from another deployment surface cannot be replayed.
const cookieSealContext = "session-cookie"

// CookieResolver reads and writes the session cookie. With a sealer
// configured the cookie value is an opaque authenticated ciphertext of
// the session ID; without one the ID is stored as-is.
type CookieResolver struct {
	name   string
	secure bool
	sealer *seal.Sealer
}

// NewCookieResolver creates a resolver for the named cookie. sealer may
// be nil to store session IDs unencrypted.
func NewCookieResolver(name string, secure bool, sealer *seal.Sealer) *CookieResolver {
	return &CookieResolver{
		name:   name,
		secure: secure,
		sealer: sealer,
	}
}

// Name returns the cookie name.
func (c *CookieResolver) Name() string {
	return c.name
}

// Resolve extracts the session ID from the request cookie. It returns
// false when the cookie is absent, fails to unseal, or does not carry a
// well-formed session ID.
func (c *CookieResolver) Resolve(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	value := cookie.Value
	if c.sealer != nil {
		opened, err := c.sealer.Open(value, cookieSealContext)
		if err != nil {
			return "", false
		}
		value = opened
	}

	if !sessid.IsValid(value) {
		return "", false
	}
	return sessid.Normalize(value), true
}

// Set writes the session cookie for id.
func (c *CookieResolver) Set(w http.ResponseWriter, id string) error {
	value := id
	if c.sealer != nil {
		sealed, err := c.sealer.Seal(id, cookieSealContext)
		if err != nil {
			return err
		}
		value = sealed
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Expire instructs the client to drop the session cookie.
func (c *CookieResolver) Expire(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
