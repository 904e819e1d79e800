package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaayakalpa/healthfinder/internal/api/handlers"
	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
)

func TestUploadsHandler_ServeFile(t *testing.T) {
	dir := t.TempDir()
	name := businessUser.ID + "-5f0c.pdf"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o644))
	handler := handlers.NewUploadsHandler(dir)

	tests := []struct {
		name   string
		caller *entities.User
		want   int
	}{
		{name: "anonymous", caller: nil, want: http.StatusUnauthorized},
		{name: "other user", caller: regularUser, want: http.StatusForbidden},
		{name: "owner", caller: businessUser, want: http.StatusOK},
		{name: "admin", caller: adminUser, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/uploads/"+name, nil)
			req.SetPathValue("name", name)
			if tt.caller != nil {
				req = asUser(req, tt.caller)
			}
			w := httptest.NewRecorder()
			handler.ServeFile(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "%PDF-1.4", w.Body.String())
				assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			}
		})
	}
}
