package httpapi

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/grapevine/internal/common"
	"github.com/dmitrijs2005/grapevine/internal/server/auth"
	"github.com/dmitrijs2005/grapevine/internal/server/models"
)

// fakeUsers is an in-memory UserService that also serves as the gate's
// user store, so sessions issued by Login resolve against the same rows.
type fakeUsers struct {
	mu        sync.Mutex
	tokens    *auth.TokenService
	nextID    int64
	rows      map[int64]*models.User
	passwords map[int64]string
	err       error
}

func newFakeUsers(tokens *auth.TokenService) *fakeUsers {
	return &fakeUsers{tokens: tokens, rows: map[int64]*models.User{}, passwords: map[int64]string{}}
}

func (f *fakeUsers) add(username, password string, admin bool) *models.User {
	u, err := f.Create(context.Background(), username, password, admin)
	if err != nil {
		panic(err)
	}
	return u
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Login(_ context.Context, username, password string) (*models.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, "", f.err
	}
	for id, u := range f.rows {
		if u.Username != username {
			continue
		}
		if f.passwords[id] != password {
			return nil, "", common.ErrInvalidCredentials
		}
		tok, err := f.tokens.Issue(u.ID, u.Admin, u.PasswordVersion)
		if err != nil {
			return nil, "", err
		}
		cp := *u
		return &cp, tok, nil
	}
	return nil, "", common.ErrInvalidCredentials
}

func (f *fakeUsers) List(_ context.Context, page, limit int) ([]*models.User, models.Pagination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, models.Pagination{}, f.err
	}
	all := make([]*models.User, 0, len(f.rows))
	for _, u := range f.rows {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	off := models.Offset(page, limit)
	if off > len(all) {
		off = len(all)
	}
	return all[off:min(off+limit, len(all))], models.NewPagination(page, limit, len(all)), nil
}

func (f *fakeUsers) Create(_ context.Context, username, password string, admin bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.rows {
		if u.Username == username {
			return nil, common.ErrAlreadyExists
		}
	}
	f.nextID++
	now := time.Date(2026, 1, 1, 0, 0, int(f.nextID), 0, time.UTC)
	u := &models.User{ID: f.nextID, Username: username, PasswordHash: "hash:" + password, Admin: admin, CreatedAt: now, UpdatedAt: now}
	f.rows[u.ID] = u
	f.passwords[u.ID] = password
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Update(_ context.Context, id int64, username, password *string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if username == nil && password == nil {
		return nil, common.ErrNothingToUpdate
	}
	u, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if username != nil {
		u.Username = *username
	}
	if password != nil {
		f.passwords[id] = *password
		u.PasswordHash = "hash:" + *password
		u.PasswordVersion++
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	delete(f.passwords, id)
	return nil
}

// fakeAudio is an in-memory AudioFileService.
type fakeAudio struct {
	mu         sync.Mutex
	nextID     int64
	rows       map[int64]*models.AudioFile
	lastFilter models.AudioFileFilter
	lastPage   int
	lastPatch  models.AudioFilePatch
	presignErr error
}

func newFakeAudio() *fakeAudio {
	return &fakeAudio{rows: map[int64]*models.AudioFile{}}
}

func (f *fakeAudio) owned(userID, id int64) (*models.AudioFile, error) {
	a, ok := f.rows[id]
	if !ok || a.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *fakeAudio) UploadURL(_ context.Context, userID int64, fileName, fileType string) (string, string, error) {
	if !strings.HasPrefix(fileType, "audio/") {
		return "", "", common.ErrNotAudio
	}
	if f.presignErr != nil {
		return "", "", f.presignErr
	}
	key := "uploads/" + itoa(userID) + "/1-" + fileName
	return "https://put/" + key, key, nil
}

func (f *fakeAudio) DownloadURL(_ context.Context, userID, id int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, err := f.owned(userID, id)
	if err != nil {
		return "", err
	}
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://get/" + a.Metadata.Key, nil
}

func (f *fakeAudio) Create(_ context.Context, userID int64, title, description, key string, tags []string) (*models.AudioFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !strings.HasPrefix(key, "uploads/"+itoa(userID)+"/") {
		return nil, common.ErrInvalidFileKey
	}
	f.nextID++
	a := &models.AudioFile{
		ID: f.nextID, Title: title, Description: description, UserID: userID,
		FileURL:  "https://grapevine.s3.amazonaws.com/" + key,
		Metadata: models.AudioMetadata{Key: key, Tags: tags},
	}
	f.rows[a.ID] = a
	cp := *a
	return &cp, nil
}

func (f *fakeAudio) List(_ context.Context, filter models.AudioFileFilter, page int) ([]*models.AudioFile, models.Pagination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	f.lastPage = page
	var out []*models.AudioFile
	for _, a := range f.rows {
		if a.UserID == filter.UserID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, models.NewPagination(page, filter.Limit, len(out)), nil
}

func (f *fakeAudio) Update(_ context.Context, userID, id int64, patch models.AudioFilePatch) (*models.AudioFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPatch = patch
	a, err := f.owned(userID, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Description != nil {
		a.Description = *patch.Description
	}
	if patch.Tags != nil {
		a.Metadata.Tags = patch.Tags
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAudio) Delete(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.owned(userID, id); err != nil {
		return err
	}
	delete(f.rows, id)
	return nil
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
