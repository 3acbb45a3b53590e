package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/edulink/linking-server-go/internal/errors"
	"github.com/edulink/linking-server-go/internal/model"
)

// LinkingCodeRepository handles linking code data operations. Rows are never
// deleted; invalidation flips used instead so the history stays queryable.
type LinkingCodeRepository interface {
	FindValidByCode(ctx context.Context, code string, now time.Time) (*model.LinkingCode, error)
	FindValidByStudentID(ctx context.Context, studentID string, now time.Time) (*model.LinkingCode, error)
	Create(ctx context.Context, params model.CreateLinkingCodeParams) (*model.LinkingCode, error)
	InvalidateAllForStudent(ctx context.Context, studentID string) (int64, error)
	CountActive(ctx context.Context, now time.Time) (int, error)
	// LockStudent serializes code issuance for one student. It takes a
	// transaction-scoped advisory lock, so it only has an effect on a
	// repository obtained from WithTx.
	LockStudent(ctx context.Context, studentID string) error
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) LinkingCodeRepository
}

type linkingCodeRepo struct {
	db sqlxDB
}

// sqlxDB is an interface satisfied by both *sqlx.DB and *sqlx.Tx
type sqlxDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func NewLinkingCodeRepository(db *sqlx.DB) LinkingCodeRepository {
	return &linkingCodeRepo{db: db}
}

func (r *linkingCodeRepo) WithTx(tx *sqlx.Tx) LinkingCodeRepository {
	return &linkingCodeRepo{db: tx}
}

func (r *linkingCodeRepo) FindValidByCode(ctx context.Context, code string, now time.Time) (*model.LinkingCode, error) {
	var lc model.LinkingCode
	err := r.db.GetContext(ctx, &lc, `
		SELECT * FROM linking_codes
		WHERE code = $1 AND used = FALSE AND expires_at > $2
	`, code, now)
	return HandleNotFound(&lc, err)
}

func (r *linkingCodeRepo) FindValidByStudentID(ctx context.Context, studentID string, now time.Time) (*model.LinkingCode, error) {
	var lc model.LinkingCode
	err := r.db.GetContext(ctx, &lc, `
		SELECT * FROM linking_codes
		WHERE student_id = $1 AND used = FALSE AND expires_at > $2
		ORDER BY created_at DESC
		LIMIT 1
	`, studentID, now)
	return HandleNotFound(&lc, err)
}

func (r *linkingCodeRepo) Create(ctx context.Context, params model.CreateLinkingCodeParams) (*model.LinkingCode, error) {
	var lc model.LinkingCode
	err := r.db.GetContext(ctx, &lc, `
		INSERT INTO linking_codes (id, student_id, code, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.ID, params.StudentID, params.Code, params.ExpiresAt)
	if isUniqueViolation(err, "linking_codes_code_key") {
		return nil, apperrors.CodeCollision(params.Code)
	}
	if err != nil {
		return nil, err
	}
	return &lc, nil
}

func (r *linkingCodeRepo) InvalidateAllForStudent(ctx context.Context, studentID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE linking_codes
		SET used = TRUE
		WHERE student_id = $1 AND used = FALSE
	`, studentID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *linkingCodeRepo) CountActive(ctx context.Context, now time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM linking_codes
		WHERE used = FALSE AND expires_at > $1
	`, now)
	return count, err
}

func (r *linkingCodeRepo) LockStudent(ctx context.Context, studentID string) error {
	_, err := r.db.ExecContext(ctx, `
		SELECT pg_advisory_xact_lock(hashtext($1))
	`, studentID)
	return err
}
