package audiofiles

import (
	"context"

	"github.com/dmitrijs2005/grapevine/internal/server/models"
)

// Repository stores audio file records. Every read and write except Create is
// scoped to an owner; a row owned by someone else behaves as missing.
type Repository interface {
	Create(ctx context.Context, file *models.AudioFile) (*models.AudioFile, error)
	List(ctx context.Context, filter models.AudioFileFilter) ([]*models.AudioFile, error)
	Count(ctx context.Context, filter models.AudioFileFilter) (int, error)
	// GetOwned loads one row. With forUpdate the row stays locked until the
	// surrounding transaction ends.
	GetOwned(ctx context.Context, id, userID int64, forUpdate bool) (*models.AudioFile, error)
	Update(ctx context.Context, id, userID int64, patch models.AudioFilePatch) (*models.AudioFile, error)
	Delete(ctx context.Context, id, userID int64) error
}
