package ports

import (
	"context"

	"github.com/lorrc/user-directory/internal/core/domain"
)

// UserSource fetches synthetic user records from an external provider.
type UserSource interface {
	FetchUsers(ctx context.Context) ([]domain.UserRecord, error)
}

// SessionStore owns one directory per browser session.
type SessionStore interface {
	Get(id string) (*domain.Directory, error)
	GetOrCreate(id string) *domain.Directory
	Len() int
}
