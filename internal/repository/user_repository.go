package repository

import (
	"context"
	"errors"
	"strings"

	"chatfuse/internal/entities"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	var phone interface{}
	if user.Phone != "" {
		phone = user.Phone
	}

	err := r.db.QueryRow(ctx,
		"INSERT INTO users (email, password, phone, plan, rol) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		user.Email, user.PasswordHash, phone, user.Plan, user.Rol).Scan(&user.ID)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findBy(ctx, "email", email)
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*entities.User, error) {
	return r.findBy(ctx, "phone", phone)
}

func (r *UserRepository) findBy(ctx context.Context, column, value string) (*entities.User, error) {
	var user entities.User
	var phone *string
	err := r.db.QueryRow(ctx,
		"SELECT id, email, password, phone, plan, rol FROM users WHERE "+column+" = $1",
		value).Scan(&user.ID, &user.Email, &user.PasswordHash, &phone, &user.Plan, &user.Rol)

	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	if phone != nil {
		user.Phone = *phone
	}
	return &user, nil
}

// mapUniqueViolation turns Postgres 23505 errors into the user-facing duplicate
// sentinels, keyed by the violated constraint.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return entities.ErrEmailRegistered
		case strings.Contains(pgErr.ConstraintName, "phone"):
			return entities.ErrPhoneRegistered
		}
	}
	return err
}
