package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/grapevine/internal/common"
	"github.com/dmitrijs2005/grapevine/internal/logging"
	"github.com/dmitrijs2005/grapevine/internal/server/auth"
	"github.com/dmitrijs2005/grapevine/internal/server/models"
	"github.com/dmitrijs2005/grapevine/internal/server/repositories/repomanager"
)

// UserService covers sign-in and account administration.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	tokens      *auth.TokenService
	store       ObjectStore
	log         logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher,
	tokens *auth.TokenService, store ObjectStore, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		store:       store,
		log:         log.With("module", "users"),
	}
}

// Login checks credentials and issues a session token carrying the user's
// current password version. Unknown user and wrong password both fail with
// common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.VerifyNothing(password)
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Admin, user.PasswordVersion)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// List returns one page of accounts, newest first.
func (s *UserService) List(ctx context.Context, page, limit int) ([]*models.User, models.Pagination, error) {
	repo := s.repomanager.Users(s.db)

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	users, err := repo.List(ctx, limit, models.Offset(page, limit))
	if err != nil {
		return nil, models.Pagination{}, err
	}

	return users, models.NewPagination(page, limit, total), nil
}

// Create registers an account. A taken username fails with common.ErrAlreadyExists.
func (s *UserService) Create(ctx context.Context, username, password string, admin bool) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Username:     username,
		PasswordHash: hash,
		Admin:        admin,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user created", "user_id", user.ID, "admin", user.Admin)
	return user, nil
}

// Update changes the username and/or password of an account. A new password
// revokes every session issued before it. With neither set it fails with
// common.ErrNothingToUpdate.
func (s *UserService) Update(ctx context.Context, id int64, username, password *string) (*models.User, error) {
	patch := models.UserPatch{Username: username}
	if password != nil {
		hash, err := s.hasher.Hash(*password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}
	if patch.Empty() {
		return nil, common.ErrNothingToUpdate
	}

	user, err := s.repomanager.Users(s.db).UpdateCredentials(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if password != nil {
		s.log.Info(ctx, "password changed, sessions revoked", "user_id", id, "password_version", user.PasswordVersion)
	}
	return user, nil
}

// SetPassword is Update by username, for operators.
func (s *UserService) SetPassword(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, user.ID, nil, &password)
}

// Delete removes the account's stored objects and then the account itself;
// its audio rows go with it. Sessions of a deleted account stop resolving.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByID(ctx, id); err != nil {
		return err
	}

	n, err := s.store.DeletePrefix(ctx, UserPrefix(id))
	if err != nil {
		return fmt.Errorf("delete user objects: %w", err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info(ctx, "user deleted", "user_id", id, "objects_removed", n)
	return nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
