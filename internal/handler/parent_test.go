package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/edulink/linking-server-go/internal/errors"
	"github.com/edulink/linking-server-go/internal/model"
)

func TestParentHandler_RedeemCode(t *testing.T) {
	parentID := uuid.NewString()
	studentID := uuid.NewString()

	redeemBody := func(pID, code string) *bytes.Buffer {
		body, _ := json.Marshal(map[string]string{"parentId": pID, "code": code})
		return bytes.NewBuffer(body)
	}

	t.Run("creates a pending link request", func(t *testing.T) {
		users := new(mockUserRepo)
		codes := new(mockLinkingCodeRepo)
		requests := new(mockLinkRequestRepo)

		users.On("FindByIDAndRole", mock.Anything, parentID, model.UserRoleParent).
			Return(&model.User{ID: parentID, Role: model.UserRoleParent, FullName: "Minho Kim"}, nil)
		codes.On("FindValidByCode", mock.Anything, "STU-AB12CD", mock.Anything).
			Return(&model.LinkingCode{
				ID:        uuid.NewString(),
				StudentID: studentID,
				Code:      "STU-AB12CD",
				ExpiresAt: time.Now().Add(12 * time.Hour),
			}, nil)
		requests.On("Create", mock.Anything, mock.AnythingOfType("model.CreateLinkRequestParams")).
			Return(&model.LinkRequest{
				ID:        uuid.NewString(),
				ParentID:  parentID,
				StudentID: studentID,
				Status:    model.LinkRequestStatusPending,
			}, nil)

		handler := NewParentHandler(newLinkingService(users, codes, requests))

		req := httptest.NewRequest(http.MethodPost, "/link-request", redeemBody(parentID, "STU-AB12CD"))
		rec := httptest.NewRecorder()

		handler.RedeemCode(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":true`)
		assert.Contains(t, rec.Body.String(), "message")
	})

	t.Run("returns 400 for an unknown code", func(t *testing.T) {
		users := new(mockUserRepo)
		codes := new(mockLinkingCodeRepo)

		users.On("FindByIDAndRole", mock.Anything, parentID, model.UserRoleParent).
			Return(&model.User{ID: parentID, Role: model.UserRoleParent, FullName: "Minho Kim"}, nil)
		codes.On("FindValidByCode", mock.Anything, "STU-ZZ99ZZ", mock.Anything).
			Return(nil, nil)

		requests := new(mockLinkRequestRepo)
		handler := NewParentHandler(newLinkingService(users, codes, requests))

		req := httptest.NewRequest(http.MethodPost, "/link-request", redeemBody(parentID, "STU-ZZ99ZZ"))
		rec := httptest.NewRecorder()

		handler.RedeemCode(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_OR_EXPIRED_CODE")
		requests.AssertNotCalled(t, "Create")
	})

	t.Run("returns 400 when the pair is already linked", func(t *testing.T) {
		users := new(mockUserRepo)
		codes := new(mockLinkingCodeRepo)
		requests := new(mockLinkRequestRepo)

		users.On("FindByIDAndRole", mock.Anything, parentID, model.UserRoleParent).
			Return(&model.User{ID: parentID, Role: model.UserRoleParent, FullName: "Minho Kim"}, nil)
		codes.On("FindValidByCode", mock.Anything, "STU-AB12CD", mock.Anything).
			Return(&model.LinkingCode{
				ID:        uuid.NewString(),
				StudentID: studentID,
				Code:      "STU-AB12CD",
				ExpiresAt: time.Now().Add(12 * time.Hour),
			}, nil)
		requests.On("Create", mock.Anything, mock.AnythingOfType("model.CreateLinkRequestParams")).
			Return(nil, apperrors.LinkAlreadyExists())

		handler := NewParentHandler(newLinkingService(users, codes, requests))

		req := httptest.NewRequest(http.MethodPost, "/link-request", redeemBody(parentID, "STU-AB12CD"))
		rec := httptest.NewRecorder()

		handler.RedeemCode(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "LINK_ALREADY_EXISTS")
		assert.Contains(t, rec.Body.String(), `"success":false`)
	})

	t.Run("returns 400 when parentId is missing", func(t *testing.T) {
		handler := NewParentHandler(newLinkingService(new(mockUserRepo), new(mockLinkingCodeRepo), new(mockLinkRequestRepo)))

		body := bytes.NewBufferString(`{"code": "STU-AB12CD"}`)
		req := httptest.NewRequest(http.MethodPost, "/link-request", body)
		rec := httptest.NewRecorder()

		handler.RedeemCode(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "MISSING_REQUIRED")
	})

	t.Run("returns 400 when parentId is not a UUID", func(t *testing.T) {
		handler := NewParentHandler(newLinkingService(new(mockUserRepo), new(mockLinkingCodeRepo), new(mockLinkRequestRepo)))

		req := httptest.NewRequest(http.MethodPost, "/link-request", redeemBody("not-a-uuid", "STU-AB12CD"))
		rec := httptest.NewRecorder()

		handler.RedeemCode(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
	})

	t.Run("returns 400 for a malformed body", func(t *testing.T) {
		handler := NewParentHandler(newLinkingService(new(mockUserRepo), new(mockLinkingCodeRepo), new(mockLinkRequestRepo)))

		body := bytes.NewBufferString(`{"parentId": `)
		req := httptest.NewRequest(http.MethodPost, "/link-request", body)
		rec := httptest.NewRecorder()

		handler.RedeemCode(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
	})
}

func TestParentHandler_ListStudents(t *testing.T) {
	parentID := uuid.NewString()
	studentID := uuid.NewString()

	t.Run("returns approved students", func(t *testing.T) {
		requests := new(mockLinkRequestRepo)
		avatar := "https://cdn.example.com/avatars/sana.png"
		requests.On("ListApprovedByParentID", mock.Anything, parentID).
			Return([]model.LinkedStudent{
				{
					ID:            studentID,
					FullName:      "Sana Kim",
					Avatar:        &avatar,
					EducationPath: json.RawMessage(`{"grade": 9, "track": "science"}`),
					Status:        model.LinkRequestStatusApproved,
				},
			}, nil)

		handler := NewParentHandler(newLinkingService(new(mockUserRepo), new(mockLinkingCodeRepo), requests))

		req := httptest.NewRequest(http.MethodGet, "/students?parentId="+parentID, nil)
		rec := httptest.NewRecorder()

		handler.ListStudents(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var students []model.LinkedStudent
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
		require.Len(t, students, 1)
		assert.Equal(t, "Sana Kim", students[0].FullName)
		assert.Equal(t, model.LinkRequestStatusApproved, students[0].Status)
	})

	t.Run("returns empty array when no students are linked", func(t *testing.T) {
		requests := new(mockLinkRequestRepo)
		requests.On("ListApprovedByParentID", mock.Anything, parentID).
			Return(nil, nil)

		handler := NewParentHandler(newLinkingService(new(mockUserRepo), new(mockLinkingCodeRepo), requests))

		req := httptest.NewRequest(http.MethodGet, "/students?parentId="+parentID, nil)
		rec := httptest.NewRecorder()

		handler.ListStudents(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("returns 400 when parentId is missing", func(t *testing.T) {
		handler := NewParentHandler(newLinkingService(new(mockUserRepo), new(mockLinkingCodeRepo), new(mockLinkRequestRepo)))

		req := httptest.NewRequest(http.MethodGet, "/students", nil)
		rec := httptest.NewRecorder()

		handler.ListStudents(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "MISSING_REQUIRED")
	})
}
