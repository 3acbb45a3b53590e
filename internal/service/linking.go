package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/edulink/linking-server-go/internal/audit"
	"github.com/edulink/linking-server-go/internal/config"
	"github.com/edulink/linking-server-go/internal/database"
	apperrors "github.com/edulink/linking-server-go/internal/errors"
	"github.com/edulink/linking-server-go/internal/model"
	"github.com/edulink/linking-server-go/internal/notify"
	"github.com/edulink/linking-server-go/internal/repository"
)

// TxRunner runs fn inside one database transaction. *database.DB satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

// LinkingService orchestrates the parent-student linking workflow: code
// issuance, redemption into a pending link request, and the student's
// approve/reject decision.
type LinkingService struct {
	db       TxRunner
	users    repository.UserRepository
	codes    repository.LinkingCodeRepository
	requests repository.LinkRequestRepository
	codeGen  CodeGenerator
	idGen    IDGenerator
	auditor  *audit.Logger
	notifier *notify.Publisher
	codeTTL  time.Duration
}

func NewLinkingService(
	db TxRunner,
	users repository.UserRepository,
	codes repository.LinkingCodeRepository,
	requests repository.LinkRequestRepository,
	codeGen CodeGenerator,
	idGen IDGenerator,
	auditor *audit.Logger,
	notifier *notify.Publisher,
	codeTTL time.Duration,
) *LinkingService {
	return &LinkingService{
		db:       db,
		users:    users,
		codes:    codes,
		requests: requests,
		codeGen:  codeGen,
		idGen:    idGen,
		auditor:  auditor,
		notifier: notifier,
		codeTTL:  codeTTL,
	}
}

// RequestCode returns the student's current valid linking code, minting a new
// one only when none exists. Repeated calls inside the validity window return
// the identical code.
func (s *LinkingService) RequestCode(ctx context.Context, studentID string) (*model.LinkingCode, error) {
	student, err := s.users.FindByIDAndRole(ctx, studentID, model.UserRoleStudent)
	if err != nil {
		return nil, fmt.Errorf("find student: %w", err)
	}
	if student == nil {
		return nil, apperrors.NotFound("Student")
	}

	var (
		issued *model.LinkingCode
		reused bool
	)
	for attempt := 1; ; attempt++ {
		err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
			codes := s.codes.WithTx(tx)

			// Serializes issuance per student so the find-then-create
			// below cannot mint two valid codes concurrently.
			if err := codes.LockStudent(ctx, studentID); err != nil {
				return fmt.Errorf("lock student: %w", err)
			}

			now := time.Now()
			existing, err := codes.FindValidByStudentID(ctx, studentID, now)
			if err != nil {
				return fmt.Errorf("find valid code: %w", err)
			}
			if existing != nil {
				issued, reused = existing, true
				return nil
			}

			created, err := codes.Create(ctx, model.CreateLinkingCodeParams{
				ID:        s.idGen.NewID(),
				StudentID: studentID,
				Code:      s.codeGen.Generate(),
				ExpiresAt: now.Add(s.codeTTL),
			})
			if err != nil {
				return err
			}
			issued, reused = created, false
			return nil
		})
		if err == nil {
			break
		}
		if !apperrors.HasCode(err, apperrors.ErrCodeCodeCollision) {
			return nil, err
		}
		if attempt >= config.CodeCollisionRetries {
			log.Error().
				Str("studentId", studentID).
				Int("attempts", attempt).
				Msg("linking code generation exhausted retries")
			return nil, apperrors.CodeGenerationFailed(attempt)
		}
		log.Warn().
			Str("studentId", studentID).
			Int("attempt", attempt).
			Msg("linking code collision, retrying")
	}

	if reused {
		log.Info().
			Str("studentId", studentID).
			Str("code", issued.Code).
			Time("expiresAt", issued.ExpiresAt).
			Msg("reusing existing linking code")
		return issued, nil
	}

	log.Info().
		Str("studentId", studentID).
		Str("code", issued.Code).
		Time("expiresAt", issued.ExpiresAt).
		Msg("linking code created")

	s.auditor.Log(ctx, audit.Event{
		Action:      audit.ActionCodeIssued,
		Description: fmt.Sprintf("Linking code issued for student %s", student.FullName),
		ActorID:     student.ID,
		ActorName:   student.FullName,
	})

	return issued, nil
}

// RedeemCode turns a valid linking code into a pending link request for the
// redeeming parent.
func (s *LinkingService) RedeemCode(ctx context.Context, parentID, code string) (*model.LinkRequest, error) {
	parent, err := s.users.FindByIDAndRole(ctx, parentID, model.UserRoleParent)
	if err != nil {
		return nil, fmt.Errorf("find parent: %w", err)
	}
	if parent == nil {
		return nil, apperrors.NotFound("Parent")
	}

	normalized := strings.ToUpper(strings.TrimSpace(code))

	lc, err := s.codes.FindValidByCode(ctx, normalized, time.Now())
	if err != nil {
		return nil, fmt.Errorf("find linking code: %w", err)
	}
	if lc == nil {
		log.Warn().Str("parentId", parentID).Msg("redemption with invalid or expired code")
		return nil, apperrors.InvalidOrExpiredCode()
	}

	// The code is not marked used here. It stays redeemable by other
	// parents until one of the resulting requests is approved.
	req, err := s.requests.Create(ctx, model.CreateLinkRequestParams{
		ID:        s.idGen.NewID(),
		ParentID:  parentID,
		StudentID: lc.StudentID,
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeLinkAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create link request: %w", err)
	}

	log.Info().
		Str("requestId", req.ID).
		Str("parentId", parentID).
		Str("studentId", lc.StudentID).
		Msg("link request created")

	s.auditor.Log(ctx, audit.Event{
		Action:      audit.ActionCodeRedeemed,
		Description: fmt.Sprintf("%s redeemed a linking code", parent.FullName),
		ActorID:     parent.ID,
		ActorName:   parent.FullName,
	})
	s.notifier.Publish(ctx, lc.StudentID, notify.Event{
		Type:      notify.EventLinkRequested,
		RequestID: req.ID,
		StudentID: lc.StudentID,
		ParentID:  parentID,
		Message:   fmt.Sprintf("%s wants to link to your profile", parent.FullName),
	})

	return req, nil
}

// Decide applies the student's approve/reject decision to a pending request.
// Approval also invalidates every outstanding code for the student, in the
// same transaction as the status change.
func (s *LinkingService) Decide(ctx context.Context, requestID string, decision model.LinkRequestStatus) (*model.LinkRequest, error) {
	if !decision.IsDecision() {
		return nil, apperrors.InvalidInput("status", "must be approved or rejected")
	}

	var decided *model.LinkRequest
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		requests := s.requests.WithTx(tx)

		updated, err := requests.SetStatus(ctx, requestID, decision, time.Now())
		if err != nil {
			return fmt.Errorf("set status: %w", err)
		}
		if updated == nil {
			existing, err := requests.FindByID(ctx, requestID)
			if err != nil {
				return fmt.Errorf("find link request: %w", err)
			}
			if existing == nil {
				return apperrors.NotFound("Link request")
			}
			return apperrors.InvalidTransition()
		}
		decided = updated

		if decision == model.LinkRequestStatusApproved {
			invalidated, err := s.codes.WithTx(tx).InvalidateAllForStudent(ctx, updated.StudentID)
			if err != nil {
				return fmt.Errorf("invalidate codes: %w", err)
			}
			log.Debug().
				Str("studentId", updated.StudentID).
				Int64("count", invalidated).
				Msg("linking codes invalidated")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("requestId", decided.ID).
		Str("studentId", decided.StudentID).
		Str("parentId", decided.ParentID).
		Str("status", string(decision)).
		Msg("link request decided")

	action := audit.ActionRequestApproved
	eventType := notify.EventLinkApproved
	message := "Your link request was approved"
	if decision == model.LinkRequestStatusRejected {
		action = audit.ActionRequestRejected
		eventType = notify.EventLinkRejected
		message = "Your link request was rejected"
	}

	actorName := ""
	if student, err := s.users.FindByID(ctx, decided.StudentID); err == nil && student != nil {
		actorName = student.FullName
	}
	s.auditor.Log(ctx, audit.Event{
		Action:      action,
		Description: fmt.Sprintf("Link request %s %s", decided.ID, decision),
		ActorID:     decided.StudentID,
		ActorName:   actorName,
	})
	s.notifier.Publish(ctx, decided.ParentID, notify.Event{
		Type:      eventType,
		RequestID: decided.ID,
		StudentID: decided.StudentID,
		ParentID:  decided.ParentID,
		Message:   message,
	})

	return decided, nil
}

// ListPendingRequests returns the pending requests awaiting the student's
// decision, oldest first, with the requesting parent's display fields.
func (s *LinkingService) ListPendingRequests(ctx context.Context, studentID string) ([]model.PendingLinkRequest, error) {
	reqs, err := s.requests.ListPendingByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return reqs, nil
}

// ListLinkedStudents returns the students the parent has been approved for.
func (s *LinkingService) ListLinkedStudents(ctx context.Context, parentID string) ([]model.LinkedStudent, error) {
	students, err := s.requests.ListApprovedByParentID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("list linked students: %w", err)
	}
	return students, nil
}
