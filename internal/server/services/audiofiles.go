package services

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/grapevine/internal/common"
	"github.com/dmitrijs2005/grapevine/internal/dbx"
	"github.com/dmitrijs2005/grapevine/internal/logging"
	"github.com/dmitrijs2005/grapevine/internal/server/models"
	"github.com/dmitrijs2005/grapevine/internal/server/repositories/repomanager"
)

// AudioFileService manages a user's audio catalogue and the presigned URLs
// used to move the bytes.
type AudioFileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	log         logging.Logger
	now         func() time.Time
}

func NewAudioFileService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore, log logging.Logger) *AudioFileService {
	return &AudioFileService{
		db:          db,
		repomanager: m,
		store:       store,
		log:         log.With("module", "audiofiles"),
		now:         time.Now,
	}
}

// UploadURL reserves a key under the user's prefix and presigns a PUT for it.
func (s *AudioFileService) UploadURL(ctx context.Context, userID int64, fileName, fileType string) (url, key string, err error) {
	if !strings.HasPrefix(fileType, "audio/") {
		return "", "", common.ErrNotAudio
	}

	key = fmt.Sprintf("%s%d-%s", UserPrefix(userID), s.now().UnixMilli(), path.Base(fileName))

	url, err = s.store.PresignUpload(ctx, key, fileType)
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}

// DownloadURL presigns a GET for one of the user's files.
func (s *AudioFileService) DownloadURL(ctx context.Context, userID, id int64) (string, error) {
	f, err := s.repomanager.AudioFiles(s.db).GetOwned(ctx, id, userID, false)
	if err != nil {
		return "", err
	}
	return s.store.PresignDownload(ctx, f.Metadata.Key)
}

// Create records an uploaded object. The key must sit under the user's prefix.
func (s *AudioFileService) Create(ctx context.Context, userID int64, title, description, key string, tags []string) (*models.AudioFile, error) {
	if !strings.HasPrefix(key, UserPrefix(userID)) || strings.Contains(key, "..") {
		return nil, common.ErrInvalidFileKey
	}
	if tags == nil {
		tags = []string{}
	}

	f, err := s.repomanager.AudioFiles(s.db).Create(ctx, &models.AudioFile{
		Title:       title,
		Description: description,
		UserID:      userID,
		FileURL:     s.store.FileURL(key),
		Metadata:    models.AudioMetadata{Key: key, Tags: tags},
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "audio file created", "user_id", userID, "file_id", f.ID)
	return f, nil
}

// List returns one page of the user's files matching filter.
func (s *AudioFileService) List(ctx context.Context, filter models.AudioFileFilter, page int) ([]*models.AudioFile, models.Pagination, error) {
	repo := s.repomanager.AudioFiles(s.db)
	filter.Offset = models.Offset(page, filter.Limit)

	total, err := repo.Count(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	files, err := repo.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	return files, models.NewPagination(page, filter.Limit, total), nil
}

// Update applies patch to one of the user's files under a row lock.
func (s *AudioFileService) Update(ctx context.Context, userID, id int64, patch models.AudioFilePatch) (*models.AudioFile, error) {
	var updated *models.AudioFile

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.AudioFiles(tx)

		if _, err := repo.GetOwned(ctx, id, userID, true); err != nil {
			return err
		}

		f, err := repo.Update(ctx, id, userID, patch)
		if err != nil {
			return err
		}
		updated = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes the stored object and then the record.
func (s *AudioFileService) Delete(ctx context.Context, userID, id int64) error {
	repo := s.repomanager.AudioFiles(s.db)

	f, err := repo.GetOwned(ctx, id, userID, false)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, f.Metadata.Key); err != nil {
		return err
	}

	if err := repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.log.Info(ctx, "audio file deleted", "user_id", userID, "file_id", id)
	return nil
}
