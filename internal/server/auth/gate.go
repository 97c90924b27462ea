package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/grapevine/internal/common"
	"github.com/dmitrijs2005/grapevine/internal/server/models"
)

// Decision outcomes, also used as metric label values.
const (
	OutcomeAuthenticated   = "authenticated"
	OutcomeMissingToken    = "missing_token"
	OutcomeInvalidToken    = "invalid_token"
	OutcomeUserNotFound    = "user_not_found"
	OutcomePasswordChanged = "password_changed"
	OutcomeForbidden       = "forbidden"
)

// Rejection is a terminal authentication or authorization failure.
type Rejection struct {
	Status  int
	Message string
	Outcome string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%d %s", r.Status, r.Message)
}

// Unwrap makes 401 rejections match common.ErrorUnauthorized.
func (r *Rejection) Unwrap() error {
	if r.Status == http.StatusUnauthorized {
		return common.ErrorUnauthorized
	}
	return nil
}

var (
	rejectMissing         = &Rejection{http.StatusUnauthorized, "Authentication required", OutcomeMissingToken}
	rejectInvalid         = &Rejection{http.StatusUnauthorized, "Invalid token", OutcomeInvalidToken}
	rejectExpired         = &Rejection{http.StatusUnauthorized, "Token expired", OutcomeInvalidToken}
	rejectUserNotFound    = &Rejection{http.StatusUnauthorized, "User not found", OutcomeUserNotFound}
	rejectPasswordChanged = &Rejection{http.StatusUnauthorized, "Your password has been changed", OutcomePasswordChanged}
	rejectNotAdmin        = &Rejection{http.StatusForbidden, "Admin access required", OutcomeForbidden}
)

// UserFinder loads the current state of a user.
type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Gate decides whether a session token belongs to a live, current user.
type Gate struct {
	tokens *TokenService
	users  UserFinder
}

func NewGate(tokens *TokenService, users UserFinder) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authenticate resolves token to its user. A refused request yields a
// *Rejection; any other error comes from the user lookup.
func (g *Gate) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, rejectMissing
	}

	claims, err := g.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, rejectExpired
		}
		return nil, rejectInvalid
	}

	user, err := g.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, rejectUserNotFound
		}
		return nil, err
	}

	if user.PasswordVersion != claims.PasswordVersion {
		return nil, rejectPasswordChanged
	}

	return user, nil
}

// AuthoriseAdmin authenticates token and then requires the admin flag.
func (g *Gate) AuthoriseAdmin(ctx context.Context, token string) (*models.User, error) {
	user, err := g.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if !user.Admin {
		return nil, rejectNotAdmin
	}
	return user, nil
}
