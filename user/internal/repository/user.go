package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	inErrors "github.com/ornamently/jewelify/internal/errors"
	"github.com/ornamently/jewelify/user/pkg/response"
)

// User is the stored row including the password hash. It never crosses the
// service boundary; Response strips the hash.
type User struct {
	ID         uuid.UUID
	Name       string
	Email      string
	Password   string
	IsVerified bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (u User) Response() response.User {
	return response.User{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return UserRepository{pool: pool}
}

const userColumns = `id, name, email, password, is_verified, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	user := User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func (r UserRepository) InsertUser(
	c context.Context,
	name string,
	email string,
	hashedPassword string,
) (User, error) {
	row := r.pool.QueryRow(
		c,
		`INSERT INTO users (id, name, email, password)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		uuid.New(),
		name,
		email,
		hashedPassword,
	)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, fmt.Errorf("email=%s with error=%w", email, inErrors.ErrEmailTaken)
		}
		return User{}, fmt.Errorf("failed inserting user with error=%w", err)
	}
	return user, nil
}

func (r UserRepository) FindByEmail(c context.Context, email string) (User, error) {
	row := r.pool.QueryRow(
		c,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("email=%s with error=%w", email, inErrors.ErrUserNotFound)
		}
		return User{}, fmt.Errorf("failed finding user with error=%w", err)
	}
	return user, nil
}

func (r UserRepository) FindById(c context.Context, id uuid.UUID) (User, error) {
	row := r.pool.QueryRow(
		c,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("userId=%s with error=%w", id.String(), inErrors.ErrUserNotFound)
		}
		return User{}, fmt.Errorf("failed finding user with error=%w", err)
	}
	return user, nil
}

func (r UserRepository) MarkVerified(c context.Context, email string) (User, error) {
	row := r.pool.QueryRow(
		c,
		`UPDATE users SET is_verified = TRUE, updated_at = NOW()
		 WHERE email = $1
		 RETURNING `+userColumns,
		email,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("email=%s with error=%w", email, inErrors.ErrUserNotFound)
		}
		return User{}, fmt.Errorf("failed marking user verified with error=%w", err)
	}
	return user, nil
}
