package users

import (
	"context"

	"github.com/dmitrijs2005/grapevine/internal/server/models"
)

// Repository is the persistent store of user accounts and their credentials.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	// UpdateCredentials applies patch in one statement. A new password hash
	// bumps password_version in the same row update.
	UpdateCredentials(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}
