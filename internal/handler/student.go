package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/edulink/linking-server-go/internal/errors"
	"github.com/edulink/linking-server-go/internal/model"
	"github.com/edulink/linking-server-go/internal/service"
)

// StudentHandler serves the student side of the linking workflow: getting a
// linking code and deciding on pending requests.
type StudentHandler struct {
	linkingService *service.LinkingService
}

func NewStudentHandler(linkingService *service.LinkingService) *StudentHandler {
	return &StudentHandler{linkingService: linkingService}
}

func (h *StudentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/linking-code", h.GetLinkingCode)
	r.Get("/link-requests", h.ListLinkRequests)
	r.Patch("/link-requests/{requestID}", h.DecideLinkRequest)

	return r
}

// GET /api/student/linking-code?studentId=
// Returns the student's current linking code, issuing one if needed.
func (h *StudentHandler) GetLinkingCode(w http.ResponseWriter, r *http.Request) {
	studentID, appErr := queryUUID(r, "studentId")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	lc, err := h.linkingService.RequestCode(r.Context(), studentID)
	if err != nil {
		if !apperrors.IsAppError(err) {
			log.Error().Err(err).Str("studentId", studentID).Msg("failed to issue linking code")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"code":      lc.Code,
		"expiresAt": lc.ExpiresAt.Format(time.RFC3339),
	})
}

// GET /api/student/link-requests?studentId=
func (h *StudentHandler) ListLinkRequests(w http.ResponseWriter, r *http.Request) {
	studentID, appErr := queryUUID(r, "studentId")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	requests, err := h.linkingService.ListPendingRequests(r.Context(), studentID)
	if err != nil {
		log.Error().Err(err).Str("studentId", studentID).Msg("failed to list link requests")
		writeError(w, err)
		return
	}

	if requests == nil {
		requests = []model.PendingLinkRequest{}
	}

	writeJSON(w, http.StatusOK, requests)
}

// PATCH /api/student/link-requests/{requestID}
// Applies the student's approve/reject decision.
func (h *StudentHandler) DecideLinkRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")
	if _, err := uuid.Parse(requestID); err != nil {
		writeError(w, apperrors.InvalidInput("requestId", "must be a valid UUID"))
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=approved rejected"`
	}
	if appErr := decodeValid(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	_, err := h.linkingService.Decide(r.Context(), requestID, model.LinkRequestStatus(req.Status))
	if err != nil {
		if !apperrors.IsAppError(err) {
			log.Error().Err(err).Str("requestId", requestID).Msg("failed to decide link request")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
