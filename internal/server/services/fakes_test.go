package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/grapevine/internal/common"
	"github.com/dmitrijs2005/grapevine/internal/dbx"
	"github.com/dmitrijs2005/grapevine/internal/server/models"
	"github.com/dmitrijs2005/grapevine/internal/server/repositories/audiofiles"
	"github.com/dmitrijs2005/grapevine/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// fakeUsersRepo is an in-memory users.Repository.
type fakeUsersRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.User
	err    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{rows: map[int64]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, row := range f.rows {
		if row.Username == u.Username {
			return nil, common.ErrAlreadyExists
		}
	}
	f.nextID++
	cp := *u
	cp.ID = f.nextID
	cp.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Second)
	cp.UpdatedAt = cp.CreatedAt
	f.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
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

func (f *fakeUsersRepo) GetByUsername(_ context.Context, name string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.rows {
		if u.Username == name {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) sorted() []*models.User {
	out := make([]*models.User, 0, len(f.rows))
	for _, u := range f.rows {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeUsersRepo) List(_ context.Context, limit, offset int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	all := f.sorted()
	if offset >= len(all) {
		return []*models.User{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (f *fakeUsersRepo) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return len(f.rows), nil
}

func (f *fakeUsersRepo) UpdateCredentials(_ context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.Username != nil {
		for _, other := range f.rows {
			if other.ID != id && other.Username == *patch.Username {
				return nil, common.ErrAlreadyExists
			}
		}
		u.Username = *patch.Username
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
		u.PasswordVersion++
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

// fakeAudioRepo is an in-memory audiofiles.Repository.
type fakeAudioRepo struct {
	mu       sync.Mutex
	nextID   int64
	rows     map[int64]*models.AudioFile
	err      error
	lastList models.AudioFileFilter
	locked   []int64
}

func newFakeAudioRepo() *fakeAudioRepo {
	return &fakeAudioRepo{rows: map[int64]*models.AudioFile{}}
}

func (f *fakeAudioRepo) Create(_ context.Context, a *models.AudioFile) (*models.AudioFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	cp := *a
	cp.ID = f.nextID
	cp.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Second)
	f.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeAudioRepo) match(a *models.AudioFile, filter models.AudioFileFilter) bool {
	if a.UserID != filter.UserID {
		return false
	}
	if s := strings.ToLower(filter.Search); s != "" &&
		!strings.Contains(strings.ToLower(a.Title), s) && !strings.Contains(strings.ToLower(a.Description), s) {
		return false
	}
	for _, want := range filter.Tags {
		found := false
		for _, t := range a.Metadata.Tags {
			if t == want {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (f *fakeAudioRepo) List(_ context.Context, filter models.AudioFileFilter) ([]*models.AudioFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.lastList = filter
	var all []*models.AudioFile
	for _, a := range f.rows {
		if f.match(a, filter) {
			cp := *a
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if filter.Offset >= len(all) {
		return []*models.AudioFile{}, nil
	}
	return all[filter.Offset:min(filter.Offset+filter.Limit, len(all))], nil
}

func (f *fakeAudioRepo) Count(_ context.Context, filter models.AudioFileFilter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, a := range f.rows {
		if f.match(a, filter) {
			n++
		}
	}
	return n, nil
}

func (f *fakeAudioRepo) GetOwned(_ context.Context, id, userID int64, forUpdate bool) (*models.AudioFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.rows[id]
	if !ok || a.UserID != userID {
		return nil, common.ErrorNotFound
	}
	if forUpdate {
		f.locked = append(f.locked, id)
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAudioRepo) Update(_ context.Context, id, userID int64, patch models.AudioFilePatch) (*models.AudioFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.rows[id]
	if !ok || a.UserID != userID {
		return nil, common.ErrorNotFound
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

func (f *fakeAudioRepo) Delete(_ context.Context, id, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	a, ok := f.rows[id]
	if !ok || a.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

// fakeRepoMgr hands out the same in-memory repos whatever DBTX it is given.
type fakeRepoMgr struct {
	users *fakeUsersRepo
	audio *fakeAudioRepo
}

func newFakeRepoMgr() *fakeRepoMgr {
	return &fakeRepoMgr{users: newFakeUsersRepo(), audio: newFakeAudioRepo()}
}

func (m *fakeRepoMgr) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoMgr) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoMgr) AudioFiles(dbx.DBTX) audiofiles.Repository    { return m.audio }

// fakeStore records calls to the object store.
type fakeStore struct {
	mu          sync.Mutex
	deleted     []string
	prefixes    []string
	presignErr  error
	deleteErr   error
	uploadTypes []string
}

func (s *fakeStore) FileURL(key string) string {
	return "https://grapevine.s3.amazonaws.com/" + key
}

func (s *fakeStore) PresignUpload(_ context.Context, key, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.presignErr != nil {
		return "", s.presignErr
	}
	s.uploadTypes = append(s.uploadTypes, contentType)
	return "https://presigned/put/" + key, nil
}

func (s *fakeStore) PresignDownload(_ context.Context, key string) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return "https://presigned/get/" + key, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	s.prefixes = append(s.prefixes, prefix)
	return 2, nil
}

var errBoom = errors.New("boom")
