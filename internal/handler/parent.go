package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/edulink/linking-server-go/internal/errors"
	"github.com/edulink/linking-server-go/internal/model"
	"github.com/edulink/linking-server-go/internal/service"
)

// ParentHandler serves the parent side of the linking workflow: redeeming a
// code and listing linked students.
type ParentHandler struct {
	linkingService *service.LinkingService
}

func NewParentHandler(linkingService *service.LinkingService) *ParentHandler {
	return &ParentHandler{linkingService: linkingService}
}

func (h *ParentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/link-request", h.RedeemCode)
	r.Get("/students", h.ListStudents)

	return r
}

// POST /api/parent/link-request
// Redeems a linking code into a pending link request.
func (h *ParentHandler) RedeemCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParentID string `json:"parentId" validate:"required,uuid"`
		Code     string `json:"code" validate:"required"`
	}
	if appErr := decodeValid(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	_, err := h.linkingService.RedeemCode(r.Context(), req.ParentID, req.Code)
	if err != nil {
		if !apperrors.IsAppError(err) {
			log.Error().Err(err).Str("parentId", req.ParentID).Msg("failed to redeem linking code")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Link request created. The student can now approve it.",
	})
}

// GET /api/parent/students?parentId=
func (h *ParentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	parentID, appErr := queryUUID(r, "parentId")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	students, err := h.linkingService.ListLinkedStudents(r.Context(), parentID)
	if err != nil {
		log.Error().Err(err).Str("parentId", parentID).Msg("failed to list linked students")
		writeError(w, err)
		return
	}

	if students == nil {
		students = []model.LinkedStudent{}
	}

	writeJSON(w, http.StatusOK, students)
}
