package auth_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"opsboard/internal/core/apperror"
	"opsboard/internal/domain/auth"
	"opsboard/internal/infrastructure/storage/postgres"
)

const tokenTable = "refresh_tokens"

var tokenCols = []string{
	"id", "user_id", "token_hash", "expires_at",
	"created_at", "revoked_at", "revoked_reason",
}

// TokenRepo implements auth.TokenRepository.
type TokenRepo struct {
	tx *postgres.TxManager
}

func NewTokenRepo(tx *postgres.TxManager) *TokenRepo {
	return &TokenRepo{tx: tx}
}

var _ auth.TokenRepository = (*TokenRepo)(nil)

func (r *TokenRepo) SaveRefreshToken(ctx context.Context, token *auth.RefreshToken) error {
	sql, args, err := builder().
		Insert(tokenTable).
		Columns("user_id", "token_hash", "expires_at", "created_at").
		Values(token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert refresh token: %w", err)
	}

	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&token.ID); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (r *TokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	sql, args, err := builder().
		Select(tokenCols...).
		From(tokenTable).
		Where(squirrel.Eq{"token_hash": tokenHash}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select refresh token: %w", err)
	}

	var token auth.RefreshToken
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &token, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("refresh token", tokenHash)
		}
		return nil, fmt.Errorf("select refresh token: %w", err)
	}
	return &token, nil
}

func (r *TokenRepo) RevokeRefreshToken(ctx context.Context, tokenID int64, reason string) error {
	sql, args, err := builder().
		Update(tokenTable).
		Set("revoked_at", time.Now()).
		Set("revoked_reason", reason).
		Where(squirrel.Eq{"id": tokenID}).
		Where("revoked_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke refresh token: %w", err)
	}

	if _, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (r *TokenRepo) RevokeAllUserTokens(ctx context.Context, userID int64, reason string) error {
	sql, args, err := builder().
		Update(tokenTable).
		Set("revoked_at", time.Now()).
		Set("revoked_reason", reason).
		Where(squirrel.Eq{"user_id": userID}).
		Where("revoked_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke user tokens: %w", err)
	}

	if _, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}
