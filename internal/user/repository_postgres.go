package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const uniqueViolation = "23505"

const (
	userColumns = `id, email, password_hash, first_name, last_name, role, is_active, created_at, updated_at`

	listUsersQuery      = `SELECT ` + userColumns + ` FROM users ORDER BY id`
	getUserByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	insertUserQuery = `
		INSERT INTO users (email, password_hash, first_name, last_name, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	updateUserQuery = `
		UPDATE users
		SET first_name = $1,
			last_name = $2,
			password_hash = COALESCE(NULLIF($3, ''), password_hash),
			is_active = $4,
			updated_at = $5
		WHERE id = $6
	`
	countUsersByRoleQuery = `SELECT COUNT(*) FROM users WHERE role = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersQuery)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (User, error) {
	return r.getOne(ctx, getUserByIDQuery, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, getUserByEmailQuery, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	err := r.db.QueryRowContext(ctx,
		insertUserQuery,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, ErrEmailExists
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) Update(ctx context.Context, user User) (User, error) {
	result, err := r.db.ExecContext(ctx,
		updateUserQuery,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.IsActive,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return User{}, err
	}
	if affected == 0 {
		return User{}, ErrNotFound
	}
	return r.GetByID(ctx, user.ID)
}

func (r *PostgresRepository) CountByRole(ctx context.Context, role string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, countUsersByRoleQuery, role).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func scanUser(scanner rowScanner) (User, error) {
	var user User
	err := scanner.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}
