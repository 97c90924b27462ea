package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/grapevine/internal/common"
)

const (
	outcomeLoginOK     = "login_ok"
	outcomeLoginFailed = "login_failed"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, token, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			s.authDecision(outcomeLoginFailed)
			s.logger.Info(r.Context(), "login refused", "request_id", requestIDFromContext(r.Context()))
		}
		s.writeServiceError(w, r, err, msgInvalidCredentials)
		return
	}

	s.authDecision(outcomeLoginOK)
	s.cookie.Attach(w, token)
	s.logger.Info(r.Context(), "login accepted", "request_id", requestIDFromContext(r.Context()), "user_id", user.ID)
	writeJSON(w, http.StatusOK, newSessionResponse(user))
}

// logout drops the session cookie. It needs no session and always succeeds.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.cookie.Clear(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Successfully logged out"})
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request, id Authenticated) {
	writeJSON(w, http.StatusOK, newSessionResponse(id.User))
}
