package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/grapevine/internal/common"
	"github.com/dmitrijs2005/grapevine/internal/server/models"
	"github.com/dmitrijs2005/grapevine/internal/server/storage"
)

const (
	msgInternal           = "Internal server error"
	msgInvalidCredentials = "Invalid username or password"
	msgUserNotFound       = "User not found"
	msgUsernameTaken      = "username already exists"
	msgAudioNotFound      = "Audio file not found or access denied"
	msgInvalidFileKey     = "Invalid file key"
	msgNotAudio           = "Only audio files are allowed"
	msgPresignFailed      = "Failed to generate pre-signed URL"
	msgInvalidBody        = "Invalid request body"
	msgNothingToUpdate    = `"value" must contain at least one of [username, password]`
	msgPasswordTooLong    = `"password" must not exceed 72 bytes`
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type sessionResponse struct {
	UserID   int64  `json:"userId"`
	Admin    bool   `json:"admin"`
	Username string `json:"username"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type userListResponse struct {
	Users      []userResponse    `json:"users"`
	Pagination models.Pagination `json:"pagination"`
}

type audioFileResponse struct {
	ID          int64                `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	UserID      int64                `json:"userId"`
	FileURL     string               `json:"fileUrl"`
	Metadata    models.AudioMetadata `json:"metadata"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

type audioFileListResponse struct {
	AudioFiles []audioFileResponse `json:"audioFiles"`
	Pagination models.Pagination   `json:"pagination"`
}

type uploadURLResponse struct {
	PresignedURL string `json:"presignedUrl"`
	Key          string `json:"key"`
}

type downloadURLResponse struct {
	PresignedURL string `json:"presignedUrl"`
}

func newSessionResponse(u *models.User) sessionResponse {
	return sessionResponse{UserID: u.ID, Admin: u.Admin, Username: u.Username}
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Admin: u.Admin, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func newAudioFileResponse(f *models.AudioFile) audioFileResponse {
	meta := f.Metadata
	if meta.Tags == nil {
		meta.Tags = []string{}
	}
	return audioFileResponse{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		UserID:      f.UserID,
		FileURL:     f.FileURL,
		Metadata:    meta,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

// writeServiceError maps a service error onto a status and a client-safe
// message. notFound is the message used for common.ErrorNotFound.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, common.ErrAlreadyExists):
		writeError(w, http.StatusBadRequest, msgUsernameTaken)
	case errors.Is(err, common.ErrInvalidFileKey):
		writeError(w, http.StatusBadRequest, msgInvalidFileKey)
	case errors.Is(err, common.ErrNotAudio):
		writeError(w, http.StatusBadRequest, msgNotAudio)
	case errors.Is(err, common.ErrNothingToUpdate):
		writeError(w, http.StatusBadRequest, msgNothingToUpdate)
	case errors.Is(err, common.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, msgPasswordTooLong)
	case errors.Is(err, storage.ErrPresign):
		s.logger.Error(r.Context(), "presign failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, msgPresignFailed)
	default:
		s.logger.Error(r.Context(), "request failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}
