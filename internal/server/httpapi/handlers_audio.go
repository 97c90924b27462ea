package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/grapevine/internal/server/models"
)

func (s *Server) uploadURL(w http.ResponseWriter, r *http.Request, id Authenticated) {
	var req uploadURLRequest
	if !s.decode(w, r, &req) {
		return
	}

	url, key, err := s.audio.UploadURL(r.Context(), id.User.ID, req.FileName, req.FileType)
	if err != nil {
		s.writeServiceError(w, r, err, msgAudioNotFound)
		return
	}

	writeJSON(w, http.StatusOK, uploadURLResponse{PresignedURL: url, Key: key})
}

func (s *Server) downloadURL(w http.ResponseWriter, r *http.Request, id Authenticated) {
	fileID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	url, err := s.audio.DownloadURL(r.Context(), id.User.ID, fileID)
	if err != nil {
		s.writeServiceError(w, r, err, msgAudioNotFound)
		return
	}

	writeJSON(w, http.StatusOK, downloadURLResponse{PresignedURL: url})
}

func (s *Server) listAudioFiles(w http.ResponseWriter, r *http.Request, id Authenticated) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := listAudioFilesQuery{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
		Tags:   queryList(r, "tags"),
	}
	if !s.check(w, &q) {
		return
	}

	files, p, err := s.audio.List(r.Context(), models.AudioFileFilter{
		UserID: id.User.ID,
		Search: q.Search,
		Tags:   q.Tags,
		Limit:  q.Limit,
	}, q.Page)
	if err != nil {
		s.writeServiceError(w, r, err, msgAudioNotFound)
		return
	}

	resp := audioFileListResponse{AudioFiles: make([]audioFileResponse, 0, len(files)), Pagination: p}
	for _, f := range files {
		resp.AudioFiles = append(resp.AudioFiles, newAudioFileResponse(f))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createAudioFile(w http.ResponseWriter, r *http.Request, id Authenticated) {
	var req createAudioFileRequest
	if !s.decode(w, r, &req) {
		return
	}

	f, err := s.audio.Create(r.Context(), id.User.ID, req.Title, req.Description, req.Key, req.Tags)
	if err != nil {
		s.writeServiceError(w, r, err, msgAudioNotFound)
		return
	}

	writeJSON(w, http.StatusCreated, newAudioFileResponse(f))
}

func (s *Server) updateAudioFile(w http.ResponseWriter, r *http.Request, id Authenticated) {
	fileID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateAudioFileRequest
	if !s.decode(w, r, &req) {
		return
	}

	f, err := s.audio.Update(r.Context(), id.User.ID, fileID, models.AudioFilePatch{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		s.writeServiceError(w, r, err, msgAudioNotFound)
		return
	}

	writeJSON(w, http.StatusOK, newAudioFileResponse(f))
}

func (s *Server) deleteAudioFile(w http.ResponseWriter, r *http.Request, id Authenticated) {
	fileID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.audio.Delete(r.Context(), id.User.ID, fileID); err != nil {
		s.writeServiceError(w, r, err, msgAudioNotFound)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Audio file deleted"})
}
