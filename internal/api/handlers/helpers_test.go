package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaayakalpa/healthfinder/internal/api/middleware"
	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
)

func newRequest(method, target, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func asUser(req *http.Request, user *entities.User) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), user))
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst))
}

var (
	regularUser  = &entities.User{ID: "user-1", Name: "Asha", Role: entities.RoleUser}
	businessUser = &entities.User{ID: "biz-1", Name: "Clinic Owner", Role: entities.RoleBusiness}
	adminUser    = &entities.User{ID: "admin-1", Name: "Admin", Role: entities.RoleAdmin}
)
