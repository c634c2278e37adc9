package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists and validates staff refresh tokens.  Only the SHA-256
// hash of a token is stored; the raw value goes back to the client once.
type TokenRepo struct{ db *sql.DB }

// NewTokenRepo returns a TokenRepo bound to the given database.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// StoreRefresh inserts a refresh token hash row for a staff account.
func (r *TokenRepo) StoreRefresh(ctx context.Context, staffID uint64, tokenHash string, exp time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (staff_id, token_hash, expires_at) VALUES (?, ?, ?)`,
		staffID, tokenHash, exp)
	return err
}

// ValidateRefresh returns the staff id when a non-revoked, non-expired
// token with this hash exists; otherwise sql.ErrNoRows.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		staffID   uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT staff_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = ? LIMIT 1`,
		tokenHash).Scan(&staffID, &expiresAt, &revokedAt)
	if err != nil {
		return 0, err
	}
	if revokedAt.Valid {
		return 0, sql.ErrNoRows
	}
	if time.Now().UTC().After(expiresAt) {
		return 0, sql.ErrNoRows
	}
	return staffID, nil
}

// RevokeByHash marks one token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE token_hash = ? AND revoked_at IS NULL`,
		tokenHash)
	return err
}

// RevokeAllForStaff revokes every active token of one staff account.
func (r *TokenRepo) RevokeAllForStaff(ctx context.Context, staffID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE staff_id = ? AND revoked_at IS NULL`,
		staffID)
	return err
}
