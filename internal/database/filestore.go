package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go-vacancy-swipe/internal/logging"
	"go-vacancy-swipe/internal/models"
)

// FileStore keeps every user in memory and rewrites users.json after each
// change. It suits a single bot process without Postgres.
type FileStore struct {
	mu       sync.Mutex
	filePath string
	users    map[int64]*models.User
	log      *logging.Logger
}

// NewFileStore creates or loads users.json under dir.
func NewFileStore(dir string, log *logging.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	fs := &FileStore{
		filePath: filepath.Join(dir, "users.json"),
		users:    make(map[int64]*models.User),
		log:      log,
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) EnsureUser(_ context.Context, u models.User) (*models.User, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if existing, ok := fs.users[u.ID]; ok {
		if u.FirstName != "" && u.FirstName != existing.FirstName {
			existing.FirstName = u.FirstName
			if err := fs.save(); err != nil {
				return nil, err
			}
		}
		return copyUser(existing), nil
	}

	if u.SearchesLeft <= 0 {
		u.SearchesLeft = models.DefaultSearches
	}
	if u.RegisteredAt.IsZero() {
		u.RegisteredAt = time.Now()
	}
	u.SavedVacancies = []models.SavedVacancy{}
	fs.users[u.ID] = &u
	if err := fs.save(); err != nil {
		delete(fs.users, u.ID)
		return nil, err
	}
	fs.log.Info("👤 New user registered", "user_id", u.ID)
	return copyUser(&u), nil
}

func (fs *FileStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	u, ok := fs.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(u), nil
}

func (fs *FileStore) Append(_ context.Context, userID int64, v models.SavedVacancy) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	u, ok := fs.users[userID]
	if !ok {
		return false, ErrUserNotFound
	}
	for _, saved := range u.SavedVacancies {
		if saved.URL == v.URL {
			return false, nil
		}
	}

	if v.SavedAt.IsZero() {
		v.SavedAt = time.Now()
	}
	u.SavedVacancies = append(u.SavedVacancies, v)
	if err := fs.save(); err != nil {
		u.SavedVacancies = u.SavedVacancies[:len(u.SavedVacancies)-1]
		return false, err
	}
	return true, nil
}

func (fs *FileStore) List(_ context.Context, userID int64) ([]models.SavedVacancy, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	u, ok := fs.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return append([]models.SavedVacancy{}, u.SavedVacancies...), nil
}

func (fs *FileStore) Clear(_ context.Context, userID int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	u, ok := fs.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	prev := u.SavedVacancies
	u.SavedVacancies = []models.SavedVacancy{}
	if err := fs.save(); err != nil {
		u.SavedVacancies = prev
		return err
	}
	return nil
}

func (fs *FileStore) ConsumeSearch(_ context.Context, userID int64) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	u, ok := fs.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	if u.SearchesLeft <= 0 {
		return 0, ErrNoSearchesLeft
	}
	u.SearchesLeft--
	if err := fs.save(); err != nil {
		u.SearchesLeft++
		return 0, err
	}
	return u.SearchesLeft, nil
}

func (fs *FileStore) Ping(context.Context) error {
	return nil
}

func (fs *FileStore) Close() {}

// load reads users.json into memory. A missing file is an empty store.
func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", fs.filePath, err)
	}

	var users []*models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return fmt.Errorf("failed to parse %s: %w", fs.filePath, err)
	}
	for _, u := range users {
		if u.SavedVacancies == nil {
			u.SavedVacancies = []models.SavedVacancy{}
		}
		fs.users[u.ID] = u
	}
	fs.log.Info("📋 Loaded users", "count", len(users), "path", fs.filePath)
	return nil
}

// save writes through a temp file so a crash never leaves half a file.
// Callers hold fs.mu.
func (fs *FileStore) save() error {
	users := make([]*models.User, 0, len(fs.users))
	for _, u := range fs.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}
	tmp := fs.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write users: %w", err)
	}
	if err := os.Rename(tmp, fs.filePath); err != nil {
		return fmt.Errorf("failed to replace users file: %w", err)
	}
	return nil
}

func copyUser(u *models.User) *models.User {
	cp := *u
	cp.SavedVacancies = append([]models.SavedVacancy{}, u.SavedVacancies...)
	return &cp
}
