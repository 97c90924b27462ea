package httpapi

import (
	"net/http"
)

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request, _ Authenticated) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 9)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := listUsersQuery{Page: page, Limit: limit}
	if !s.check(w, &q) {
		return
	}

	users, p, err := s.users.List(r.Context(), q.Page, q.Limit)
	if err != nil {
		s.writeServiceError(w, r, err, msgUserNotFound)
		return
	}

	resp := userListResponse{Users: make([]userResponse, 0, len(users)), Pagination: p}
	for _, u := range users {
		resp.Users = append(resp.Users, newUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request, _ Authenticated) {
	var req createUserRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.users.Create(r.Context(), req.Username, req.Password, false)
	if err != nil {
		s.writeServiceError(w, r, err, msgUserNotFound)
		return
	}

	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request, _ Authenticated) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateUserRequest
	if !s.decode(w, r, &req) {
		return
	}
	user, err := s.users.Update(r.Context(), id, req.Username, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err, msgUserNotFound)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request, _ Authenticated) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, msgUserNotFound)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "User deleted"})
}
