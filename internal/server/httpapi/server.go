// Package httpapi exposes the Grapevine services over HTTP: a chi router,
// cookie-based session authentication and JSON handlers.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/grapevine/internal/logging"
	"github.com/dmitrijs2005/grapevine/internal/server/auth"
	"github.com/dmitrijs2005/grapevine/internal/server/models"
	"github.com/dmitrijs2005/grapevine/internal/server/observability"
	"github.com/go-playground/validator/v10"
)

const shutdownTimeout = 10 * time.Second

// UserService is what the auth and /users handlers need from the user service.
type UserService interface {
	Login(ctx context.Context, username, password string) (*models.User, string, error)
	List(ctx context.Context, page, limit int) ([]*models.User, models.Pagination, error)
	Create(ctx context.Context, username, password string, admin bool) (*models.User, error)
	Update(ctx context.Context, id int64, username, password *string) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

// AudioFileService is what the /audio_files handlers need from the audio service.
type AudioFileService interface {
	UploadURL(ctx context.Context, userID int64, fileName, fileType string) (string, string, error)
	DownloadURL(ctx context.Context, userID, id int64) (string, error)
	Create(ctx context.Context, userID int64, title, description, key string, tags []string) (*models.AudioFile, error)
	List(ctx context.Context, filter models.AudioFileFilter, page int) ([]*models.AudioFile, models.Pagination, error)
	Update(ctx context.Context, userID, id int64, patch models.AudioFilePatch) (*models.AudioFile, error)
	Delete(ctx context.Context, userID, id int64) error
}

// Options carries the collaborators of a Server.
type Options struct {
	Address     string
	FrontendURL string
	Logger      logging.Logger
	Users       UserService
	AudioFiles  AudioFileService
	Gate        *auth.Gate
	Cookie      *auth.SessionCookie
	Metrics     *observability.Metrics
}

type Server struct {
	address     string
	frontendURL string
	logger      logging.Logger
	users       UserService
	audio       AudioFileService
	gate        *auth.Gate
	cookie      *auth.SessionCookie
	metrics     *observability.Metrics
	validate    *validator.Validate
}

func NewServer(opts Options) *Server {
	return &Server{
		address:     opts.Address,
		frontendURL: opts.FrontendURL,
		logger:      opts.Logger.With("module", "http_server"),
		users:       opts.Users,
		audio:       opts.AudioFiles,
		gate:        opts.Gate,
		cookie:      opts.Cookie,
		metrics:     opts.Metrics,
		validate:    newValidator(),
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	return nil
}
