package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-vacancy-swipe/internal/models"
)

type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// PgBouncer in transaction mode does not support prepared statements.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	if _, err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// ---------------- USER OPERATIONS ----------------

// EnsureUser creates the user on first contact and refreshes the name otherwise.
func (r *Repository) EnsureUser(ctx context.Context, u models.User) (*models.User, error) {
	if u.SearchesLeft <= 0 {
		u.SearchesLeft = models.DefaultSearches
	}
	query := `
		INSERT INTO users (id, first_name, searches_left)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET first_name = EXCLUDED.first_name
		RETURNING id, first_name, searches_left, registered_at`

	var user models.User
	err := r.db.QueryRow(ctx, query, u.ID, u.FirstName, u.SearchesLeft).
		Scan(&user.ID, &user.FirstName, &user.SearchesLeft, &user.RegisteredAt)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	if user.SavedVacancies, err = r.List(ctx, user.ID); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, "SELECT id, first_name, searches_left, registered_at FROM users WHERE id = $1", id).
		Scan(&user.ID, &user.FirstName, &user.SearchesLeft, &user.RegisteredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.SavedVacancies, err = r.List(ctx, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// ConsumeSearch takes one search off the user's quota and returns what is left.
func (r *Repository) ConsumeSearch(ctx context.Context, userID int64) (int, error) {
	var left int
	err := r.db.QueryRow(ctx,
		"UPDATE users SET searches_left = searches_left - 1 WHERE id = $1 AND searches_left > 0 RETURNING searches_left",
		userID).Scan(&left)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", userID).Scan(&exists); err != nil {
			return 0, fmt.Errorf("failed to check user: %w", err)
		}
		if !exists {
			return 0, ErrUserNotFound
		}
		return 0, ErrNoSearchesLeft
	}
	if err != nil {
		return 0, fmt.Errorf("failed to consume search: %w", err)
	}
	return left, nil
}

// ---------------- SAVED VACANCY OPERATIONS ----------------

// Append saves v unless the user already has its URL. The user row is locked
// for the duration so concurrent appends for one user serialize.
func (r *Repository) Append(ctx context.Context, userID int64, v models.SavedVacancy) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	if err := tx.QueryRow(ctx, "SELECT id FROM users WHERE id = $1 FOR UPDATE", userID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("failed to lock user: %w", err)
	}

	if v.SavedAt.IsZero() {
		v.SavedAt = time.Now()
	}
	cmd, err := tx.Exec(ctx, `
		INSERT INTO saved_vacancies (user_id, title, url, summary, saved_at)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (SELECT 1 FROM saved_vacancies WHERE user_id = $1 AND url = $3)`,
		userID, v.Title, v.URL, v.Summary, v.SavedAt)
	if err != nil {
		return false, fmt.Errorf("failed to save vacancy: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// List returns the user's saved vacancies in the order they were saved.
func (r *Repository) List(ctx context.Context, userID int64) ([]models.SavedVacancy, error) {
	rows, err := r.db.Query(ctx,
		"SELECT title, url, summary, saved_at FROM saved_vacancies WHERE user_id = $1 ORDER BY id",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vacancies: %w", err)
	}
	defer rows.Close()

	out := []models.SavedVacancy{}
	for rows.Next() {
		var v models.SavedVacancy
		if err := rows.Scan(&v.Title, &v.URL, &v.Summary, &v.SavedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vacancy: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repository) Clear(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM saved_vacancies WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to clear vacancies: %w", err)
	}
	return nil
}
