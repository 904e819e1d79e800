package handlers

import (
	"net/http"
	"path"
	"strings"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
)

// UploadsHandler serves stored license files to admins and to the account
// that uploaded them. Stored names start with the owner's user id.
type UploadsHandler struct {
	files http.Handler
}

// NewUploadsHandler serves files from dir under /uploads/
func NewUploadsHandler(dir string) *UploadsHandler {
	return &UploadsHandler{
		files: http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir))),
	}
}

// ServeFile handles GET /uploads/{name}
func (h *UploadsHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	name := path.Base(r.PathValue("name"))
	if user.Role != entities.RoleAdmin && !strings.HasPrefix(name, user.ID+"-") {
		respondWithError(w, http.StatusForbidden, "Not authorized to view this file")
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, no-store")
	h.files.ServeHTTP(w, r)
}
