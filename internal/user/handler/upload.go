package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"userhub/internal/platform/middleware"
	jsonResponse "userhub/internal/transport/http/json"
	"userhub/internal/transport/http/shared"
	"userhub/internal/user/models"
	"userhub/internal/user/service"
	dErrors "userhub/pkg/domain-errors"
)

const uploadFieldName = "profileImage"

// allowedImageTypes is the format allow-list the storage collaborator trusts
// us to enforce. Content type is sniffed from the file bytes, not taken from
// the client-supplied header.
var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

func (h *Handler) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing identity"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "file exceeds the size limit"))
			return
		}
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "please upload a file"))
		return
	}

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "please upload a file"))
		return
	}
	defer file.Close()

	// Sniff the real content type from the leading bytes.
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read file"))
		return
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if _, ok := allowedImageTypes[contentType]; !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "unsupported image format"))
		return
	}

	user, err := h.svc.UploadImage(ctx, ident.UserID, &service.UploadInput{
		Filename:    header.Filename,
		ContentType: contentType,
		Ext:         strings.ToLower(filepath.Ext(header.Filename)),
		Body:        io.MultiReader(bytes.NewReader(head), file),
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	jsonResponse.WriteJSON(w, http.StatusOK, models.NewUserResponse(user))
}
