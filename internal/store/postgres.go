package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/kbenson/userapi/internal/models"
)

const uniqueViolation = "23505"

// Postgres is the persistent Store used when DATABASE_URL is set.
// Expects a users table with id, email (unique), password_hash, name,
// role and created_at columns.
type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Connect opens a pooled sqlx handle over the pgx stdlib driver and
// fails fast if Postgres is unreachable.
func Connect(dsn string) (*sqlx.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("db: failed to parse DSN: %w", err)
	}
	cfg.ConnectTimeout = 5 * time.Second

	db := sqlx.NewDb(stdlib.OpenDB(*cfg), "pgx")
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db: failed to connect to Postgres: %w", err)
	}
	return db, nil
}

const userColumns = `id, email, password_hash, name, role, created_at`

func (p *Postgres) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := p.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &u, nil
}

func (p *Postgres) FindByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := p.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &u, nil
}

func (p *Postgres) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := p.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

func (p *Postgres) Insert(ctx context.Context, u *models.User) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Email, u.Password, u.Name, u.Role, u.CreatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, id string, upd UserUpdate) (*models.User, error) {
	var role *string
	if upd.Role != nil {
		r := string(*upd.Role)
		role = &r
	}

	var u models.User
	err := p.db.GetContext(ctx, &u, `
		UPDATE users SET
			email         = COALESCE($2, email),
			name          = COALESCE($3, name),
			role          = COALESCE($4, role),
			password_hash = COALESCE($5, password_hash)
		WHERE id = $1
		RETURNING `+userColumns,
		id, upd.Email, upd.Name, role, upd.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &u, nil
}

func (p *Postgres) Delete(ctx context.Context, id string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
