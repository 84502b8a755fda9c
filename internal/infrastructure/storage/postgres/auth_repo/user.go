// Package auth_repo implements the user account repository on
// PostgreSQL.
package auth_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"opsboard/internal/core/apperror"
	"opsboard/internal/domain/auth"
	"opsboard/internal/infrastructure/storage/postgres"
)

const userTable = "users"

var userCols = []string{"id", "email", "password_hash", "name", "role", "created_at"}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// UserRepo implements auth.Repository.
type UserRepo struct {
	tx *postgres.TxManager
}

func NewUserRepo(tx *postgres.TxManager) *UserRepo {
	return &UserRepo{tx: tx}
}

var _ auth.Repository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *auth.User) error {
	sql, args, err := builder().
		Insert(userTable).
		Columns("email", "password_hash", "name", "role", "created_at").
		Values(u.Email, u.PasswordHash, u.Name, u.Role, u.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user: %w", err)
	}

	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&u.ID); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("user", "email", u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	sql, args, err := builder().
		Select(userCols...).
		From(userTable).
		Where(squirrel.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user: %w", err)
	}

	var u auth.User
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &u, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("user", email)
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	sql, args, err := builder().
		Select(userCols...).
		From(userTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user: %w", err)
	}

	var u auth.User
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &u, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("user", id)
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}
