package store

import (
	"context"

	users "github.com/AdamBeresnev/bracket-master/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserStore struct {
	db *sqlx.DB
}

const (
	userColumns = "id, email, username, password_hash, created_at, provider, provider_id, avatar_url"

	getUserQuery           = "SELECT " + userColumns + " FROM users WHERE id = ?"
	getUserByEmailQuery    = "SELECT " + userColumns + " FROM users WHERE email = ? AND password_hash IS NOT NULL"
	getUserByProviderQuery = "SELECT " + userColumns + " FROM users WHERE provider = ? AND provider_id = ?"
	createUserQuery        = `
		INSERT INTO users (id, email, username, password_hash, provider, provider_id, avatar_url) VALUES
		(:id, :email, :username, :password_hash, :provider, :provider_id, :avatar_url)
	`
	updateProfileQuery = `
		UPDATE users SET
		username = :username,
		avatar_url = :avatar_url
		WHERE id = :id
	`
)

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) getUser(ctx context.Context, query string, args ...any) (*users.User, error) {
	var user users.User
	if err := s.db.GetContext(ctx, &user, query, args...); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByProvider finds an OAuth account, sql.ErrNoRows means first login
func (s *UserStore) GetUserByProvider(ctx context.Context, provider, providerID string) (*users.User, error) {
	return s.getUser(ctx, getUserByProviderQuery, provider, providerID)
}

// GetUserByEmail only finds accounts that can log in with a password
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	return s.getUser(ctx, getUserByEmailQuery, email)
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	return s.getUser(ctx, getUserQuery, id)
}

func (s *UserStore) CreateUser(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, createUserQuery, user)
	return err
}

func (s *UserStore) UpdateUserNameAndAvatar(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, updateProfileQuery, user)
	return err
}
