package database

import (
	"context"
	"errors"

	"go-vacancy-swipe/internal/models"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrNoSearchesLeft = errors.New("no searches left")
)

// Store persists users and their saved vacancies. Append is push-if-absent
// on (userID, URL) and atomic per user.
type Store interface {
	EnsureUser(ctx context.Context, u models.User) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	Append(ctx context.Context, userID int64, v models.SavedVacancy) (bool, error)
	List(ctx context.Context, userID int64) ([]models.SavedVacancy, error)
	Clear(ctx context.Context, userID int64) error
	ConsumeSearch(ctx context.Context, userID int64) (int, error)
	Ping(ctx context.Context) error
	Close()
}
