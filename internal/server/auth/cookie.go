package auth

import (
	"net/http"
	"time"
)

// SessionCookie carries the session token between browser and server.
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool

	now func() time.Time
}

func NewSessionCookie(name string, ttl time.Duration, secure bool) *SessionCookie {
	return &SessionCookie{Name: name, TTL: ttl, Secure: secure, now: time.Now}
}

// Attach sets the session cookie holding token on the response.
func (c *SessionCookie) Attach(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		Expires:  c.now().Add(c.TTL),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear tells the browser to drop the session cookie. Copies of the token held
// elsewhere stay valid until they expire or the password changes.
func (c *SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the token from the request cookie, or "" if there is none.
func (c *SessionCookie) Read(r *http.Request) string {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
