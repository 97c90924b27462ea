package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/grapevine/internal/logging"
	"github.com/dmitrijs2005/grapevine/internal/server/auth"
	"github.com/dmitrijs2005/grapevine/internal/server/config"
	"github.com/dmitrijs2005/grapevine/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/grapevine/internal/server/services"
	"github.com/dmitrijs2005/grapevine/internal/server/storage"
)

// Seams for tests.
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
	newObjectStore       = func(ctx context.Context, opts storage.Options) (services.ObjectStore, error) {
		return storage.NewS3Storage(ctx, opts)
	}
)

// Core is the database, storage and service layer shared by the HTTP server
// and the operator CLI.
type Core struct {
	DB         *sql.DB
	Repos      repomanager.RepositoryManager
	Hasher     *auth.PasswordHasher
	Tokens     *auth.TokenService
	Users      *services.UserService
	AudioFiles *services.AudioFileService
}

// NewCore connects to the database, applies migrations and builds the services.
func NewCore(ctx context.Context, c *config.Config, logger logging.Logger) (*Core, error) {
	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := newObjectStore(ctx, storage.Options{
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Region:       c.S3Region,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
		PresignTTL:   c.PresignTTL,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	hasher := auth.NewPasswordHasher(c.BcryptCost)
	tokens := auth.NewTokenService([]byte(c.SecretKey), c.TokenTTL)

	return &Core{
		DB:         db,
		Repos:      rm,
		Hasher:     hasher,
		Tokens:     tokens,
		Users:      services.NewUserService(db, rm, hasher, tokens, store, logger),
		AudioFiles: services.NewAudioFileService(db, rm, store, logger),
	}, nil
}

func (c *Core) Close() error {
	return c.DB.Close()
}
