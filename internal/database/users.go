package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
}

type CreateUserParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Client) CreateUser(params CreateUserParams) (*User, error) {
	id := uuid.New()
	now := time.Now().UTC()
	query := `
	INSERT INTO users (id, created_at, updated_at, email, password)
	VALUES (?, ?, ?, ?, ?)
	`
	if _, err := c.db.Exec(c.rebind(query), id.String(), now, now, params.Email, params.Password); err != nil {
		return nil, err
	}
	return c.GetUser(id)
}

func (c Client) GetUser(id uuid.UUID) (*User, error) {
	query := `
	SELECT id, created_at, updated_at, email, password
	FROM users
	WHERE id = ?
	`
	return c.scanUser(c.db.QueryRow(c.rebind(query), id.String()))
}

func (c Client) GetUserByEmail(email string) (*User, error) {
	query := `
	SELECT id, created_at, updated_at, email, password
	FROM users
	WHERE email = ?
	`
	return c.scanUser(c.db.QueryRow(c.rebind(query), email))
}

// scanUser returns nil, nil when no row matched.
func (c Client) scanUser(row *sql.Row) (*User, error) {
	var user User
	var id string
	err := row.Scan(&id, &user.CreatedAt, &user.UpdatedAt, &user.Email, &user.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
