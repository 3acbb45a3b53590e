package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/edulink/linking-server-go/internal/errors"
	"github.com/edulink/linking-server-go/internal/model"
)

// LinkRequestRepository handles link request data operations. The
// (parent_id, student_id) pair is unique for all time, whatever the status,
// and rows are never deleted.
type LinkRequestRepository interface {
	FindByID(ctx context.Context, id string) (*model.LinkRequest, error)
	Create(ctx context.Context, params model.CreateLinkRequestParams) (*model.LinkRequest, error)
	ListPendingByStudentID(ctx context.Context, studentID string) ([]model.PendingLinkRequest, error)
	ListApprovedByParentID(ctx context.Context, parentID string) ([]model.LinkedStudent, error)
	// SetStatus transitions a pending row to the given status. It returns
	// nil when the row is missing or already decided; callers tell the two
	// apart with FindByID.
	SetStatus(ctx context.Context, id string, status model.LinkRequestStatus, decidedAt time.Time) (*model.LinkRequest, error)
	CountByStatus(ctx context.Context, status model.LinkRequestStatus) (int, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) LinkRequestRepository
}

type linkRequestRepo struct {
	db sqlxDB
}

func NewLinkRequestRepository(db *sqlx.DB) LinkRequestRepository {
	return &linkRequestRepo{db: db}
}

func (r *linkRequestRepo) WithTx(tx *sqlx.Tx) LinkRequestRepository {
	return &linkRequestRepo{db: tx}
}

func (r *linkRequestRepo) FindByID(ctx context.Context, id string) (*model.LinkRequest, error) {
	var req model.LinkRequest
	err := r.db.GetContext(ctx, &req, `
		SELECT * FROM link_requests WHERE id = $1
	`, id)
	return HandleNotFound(&req, err)
}

func (r *linkRequestRepo) Create(ctx context.Context, params model.CreateLinkRequestParams) (*model.LinkRequest, error) {
	var req model.LinkRequest
	err := r.db.GetContext(ctx, &req, `
		INSERT INTO link_requests (id, parent_id, student_id)
		VALUES ($1, $2, $3)
		RETURNING *
	`, params.ID, params.ParentID, params.StudentID)
	if isUniqueViolation(err, "link_requests_parent_student_key") {
		return nil, apperrors.LinkAlreadyExists()
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *linkRequestRepo) ListPendingByStudentID(ctx context.Context, studentID string) ([]model.PendingLinkRequest, error) {
	var reqs []model.PendingLinkRequest
	err := r.db.SelectContext(ctx, &reqs, `
		SELECT lr.id, lr.parent_id, u.full_name AS parent_name, u.email AS parent_email, lr.created_at
		FROM link_requests lr
		JOIN users u ON u.id = lr.parent_id
		WHERE lr.student_id = $1 AND lr.status = 'pending'
		ORDER BY lr.created_at ASC
	`, studentID)
	return reqs, err
}

func (r *linkRequestRepo) ListApprovedByParentID(ctx context.Context, parentID string) ([]model.LinkedStudent, error) {
	var students []model.LinkedStudent
	err := r.db.SelectContext(ctx, &students, `
		SELECT u.id, u.full_name, u.avatar, u.education_path, lr.status
		FROM link_requests lr
		JOIN users u ON u.id = lr.student_id
		WHERE lr.parent_id = $1 AND lr.status = 'approved'
		ORDER BY lr.created_at ASC
	`, parentID)
	return students, err
}

func (r *linkRequestRepo) SetStatus(ctx context.Context, id string, status model.LinkRequestStatus, decidedAt time.Time) (*model.LinkRequest, error) {
	var req model.LinkRequest
	err := r.db.GetContext(ctx, &req, `
		UPDATE link_requests SET
			status = $2,
			decided_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING *
	`, id, status, decidedAt)
	return HandleNotFound(&req, err)
}

func (r *linkRequestRepo) CountByStatus(ctx context.Context, status model.LinkRequestStatus) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM link_requests WHERE status = $1
	`, status)
	return count, err
}
