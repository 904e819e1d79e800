package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaayakalpa/healthfinder/internal/api/handlers"
	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
)

type stubModerationService struct {
	err error

	gotAdminID  string
	gotID       string
	gotReason   string
	gotUpdate   entities.CenterUpdate
	gotVerified *bool
}

func (s *stubModerationService) PendingCenters(ctx context.Context) ([]*entities.Center, error) {
	return []*entities.Center{{ID: "c1", Status: entities.CenterStatusPending}}, s.err
}

func (s *stubModerationService) ApprovedCenters(ctx context.Context) ([]*entities.Center, error) {
	return []*entities.Center{{ID: "c2", Status: entities.CenterStatusApproved}}, s.err
}

func (s *stubModerationService) Approve(ctx context.Context, adminID, id string) (*entities.Center, error) {
	s.gotAdminID, s.gotID = adminID, id
	if s.err != nil {
		return nil, s.err
	}
	return &entities.Center{ID: id, Status: entities.CenterStatusApproved, IsVerified: true, VerifiedBy: &adminID}, nil
}

func (s *stubModerationService) Reject(ctx context.Context, id, reason string) (*entities.Center, error) {
	s.gotID, s.gotReason = id, reason
	if s.err != nil {
		return nil, s.err
	}
	return &entities.Center{ID: id, Status: entities.CenterStatusRejected, RejectionReason: reason}, nil
}

func (s *stubModerationService) EditPending(ctx context.Context, id string, update entities.CenterUpdate) (*entities.Center, error) {
	s.gotID, s.gotUpdate = id, update
	if s.err != nil {
		return nil, s.err
	}
	return &entities.Center{ID: id}, nil
}

func (s *stubModerationService) DeleteCenter(ctx context.Context, id string) error {
	s.gotID = id
	return s.err
}

func (s *stubModerationService) Reports(ctx context.Context) ([]*entities.Report, error) {
	return []*entities.Report{{ID: "r1", Status: entities.ReportStatusOpen}}, s.err
}

func (s *stubModerationService) MarkReportReviewed(ctx context.Context, id string) (*entities.Report, error) {
	s.gotID = id
	if s.err != nil {
		return nil, s.err
	}
	return &entities.Report{ID: id, Status: entities.ReportStatusReviewed}, nil
}

func (s *stubModerationService) SetLicenseVerified(ctx context.Context, userID string, verified bool) (*entities.User, error) {
	s.gotID, s.gotVerified = userID, &verified
	if s.err != nil {
		return nil, s.err
	}
	return &entities.User{ID: userID, Role: entities.RoleBusiness, IsLicenseVerified: verified}, nil
}

func (s *stubModerationService) Users(ctx context.Context) ([]*entities.User, error) {
	return []*entities.User{adminUser, regularUser}, s.err
}

func withID(req *http.Request, id string) *http.Request {
	req.SetPathValue("id", id)
	return req
}

func TestAdminHandler_Listings(t *testing.T) {
	handler := handlers.NewAdminHandler(&stubModerationService{})

	for name, serve := range map[string]http.HandlerFunc{
		"pending":  handler.PendingCenters,
		"approved": handler.ApprovedCenters,
		"reports":  handler.ListReports,
		"users":    handler.ListUsers,
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			serve(w, newRequest(http.MethodGet, "/api/admin/"+name, ""))

			assert.Equal(t, http.StatusOK, w.Code)
			var items []map[string]interface{}
			decodeInto(t, w, &items)
			assert.NotEmpty(t, items)
		})
	}
}

func TestAdminHandler_ApproveCenter(t *testing.T) {
	service := &stubModerationService{}
	handler := handlers.NewAdminHandler(service)

	w := httptest.NewRecorder()
	handler.ApproveCenter(w, asUser(withID(newRequest(http.MethodPut, "/api/admin/centers/c1/approve", ""), "c1"), adminUser))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, adminUser.ID, service.gotAdminID)
	assert.Equal(t, "c1", service.gotID)
	body := decodeMap(t, w)
	assert.Equal(t, "approved", body["status"])
	assert.Equal(t, adminUser.ID, body["verified_by"])
}

func TestAdminHandler_RejectCenter(t *testing.T) {
	t.Run("rejected with reason", func(t *testing.T) {
		service := &stubModerationService{}
		handler := handlers.NewAdminHandler(service)

		w := httptest.NewRecorder()
		handler.RejectCenter(w, withID(newRequest(http.MethodPut, "/api/admin/centers/c1/reject", `{"reason":"Duplicate listing"}`), "c1"))

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeMap(t, w)
		assert.Equal(t, "Duplicate listing", body["reason"])
		center, ok := body["center"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "rejected", center["status"])
	})

	t.Run("not pending", func(t *testing.T) {
		service := &stubModerationService{err: apperrors.NewNotFoundError("Pending center not found")}
		handler := handlers.NewAdminHandler(service)

		w := httptest.NewRecorder()
		handler.RejectCenter(w, withID(newRequest(http.MethodPut, "/api/admin/centers/c9/reject", `{}`), "c9"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminHandler_EditDeleteAndReview(t *testing.T) {
	service := &stubModerationService{}
	handler := handlers.NewAdminHandler(service)

	w := httptest.NewRecorder()
	handler.EditCenter(w, withID(newRequest(http.MethodPut, "/api/admin/centers/c1", `{"name":"Sunrise Wellness"}`), "c1"))
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, service.gotUpdate.Name)
	assert.Equal(t, "Sunrise Wellness", *service.gotUpdate.Name)

	w = httptest.NewRecorder()
	handler.DeleteCenter(w, withID(newRequest(http.MethodDelete, "/api/admin/centers/c1", ""), "c1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Center deleted", decodeMap(t, w)["message"])

	w = httptest.NewRecorder()
	handler.ReviewReport(w, withID(newRequest(http.MethodPut, "/api/admin/reports/r1/reviewed", ""), "r1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reviewed", decodeMap(t, w)["status"])
}

func TestAdminHandler_SetLicenseVerification(t *testing.T) {
	tests := []struct {
		body    string
		want    bool
		message string
	}{
		{body: `{"verified":true}`, want: true, message: "Business verified"},
		{body: `{"verified":false}`, want: false, message: "Verification revoked"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			service := &stubModerationService{}
			handler := handlers.NewAdminHandler(service)

			w := httptest.NewRecorder()
			handler.SetLicenseVerification(w, withID(newRequest(http.MethodPut, "/api/admin/users/biz-1/license", tt.body), "biz-1"))

			assert.Equal(t, http.StatusOK, w.Code)
			require.NotNil(t, service.gotVerified)
			assert.Equal(t, tt.want, *service.gotVerified)
			body := decodeMap(t, w)
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, tt.want, body["user"].(map[string]interface{})["is_license_verified"])
		})
	}
}
