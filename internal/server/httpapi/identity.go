package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/grapevine/internal/server/auth"
	"github.com/dmitrijs2005/grapevine/internal/server/models"
)

// Identity is who a request acts as: Anonymous or Authenticated.
type Identity interface {
	identity()
}

// Anonymous is a request without a usable session.
type Anonymous struct{}

// Authenticated is a request whose session resolved to a live user.
type Authenticated struct {
	User *models.User
}

func (Anonymous) identity()     {}
func (Authenticated) identity() {}

// authedHandler is a handler that only runs for an authenticated caller.
type authedHandler func(w http.ResponseWriter, r *http.Request, id Authenticated)

// identify resolves the session cookie. A refused session yields Anonymous
// and the reason.
func (s *Server) identify(r *http.Request, admin bool) (Identity, error) {
	token := s.cookie.Read(r)

	var (
		user *models.User
		err  error
	)
	if admin {
		user, err = s.gate.AuthoriseAdmin(r.Context(), token)
	} else {
		user, err = s.gate.Authenticate(r.Context(), token)
	}
	if err != nil {
		return Anonymous{}, err
	}
	return Authenticated{User: user}, nil
}

func (s *Server) authenticate(h authedHandler) http.HandlerFunc {
	return s.guard(h, false)
}

func (s *Server) authoriseAdmin(h authedHandler) http.HandlerFunc {
	return s.guard(h, true)
}

func (s *Server) guard(h authedHandler, admin bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.identify(r, admin)

		switch v := id.(type) {
		case Authenticated:
			s.authDecision(auth.OutcomeAuthenticated)
			h(w, r, v)
			return
		case Anonymous:
			var rej *auth.Rejection
			if errors.As(err, &rej) {
				s.authDecision(rej.Outcome)
				s.logger.Debug(r.Context(), "request rejected",
					"request_id", requestIDFromContext(r.Context()), "outcome", rej.Outcome)
				writeError(w, rej.Status, rej.Message)
				return
			}
			s.logger.Error(r.Context(), "session lookup failed",
				"request_id", requestIDFromContext(r.Context()), "error", err)
			writeError(w, http.StatusInternalServerError, msgInternal)
		}
	}
}

func (s *Server) authDecision(outcome string) {
	if s.metrics != nil {
		s.metrics.AuthDecision(outcome)
	}
}
