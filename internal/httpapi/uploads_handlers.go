package httpapi

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"pricescout-engine/internal/config"
	"pricescout-engine/internal/events"
	"pricescout-engine/internal/store"
)

type UploadsHandler struct {
	DB        *sql.DB
	Hub       *events.Hub
	CfgVal    *atomic.Value // config.Config
	UploadDir string
}

var defaultImageExts = []string{"png", "jpg", "jpeg", "gif", "webp"}

// upload accepts one or more multipart "images" files, stores them
// under the upload dir with a timestamped name, and appends the stored
// paths to the item.
func (h UploadsHandler) upload(itemID int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := store.GetItem(r.Context(), h.DB, itemID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteError(w, r, http.StatusNotFound, "not_found", "item not found")
				return
			}
			WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
			return
		}

		cfg := h.CfgVal.Load().(config.Config)
		maxMB := cfg.Uploads.MaxFileMB
		if maxMB <= 0 {
			maxMB = 10
		}
		maxBytes := int64(maxMB) << 20

		allowed := cfg.Uploads.AllowedExtensions
		if len(allowed) == 0 {
			allowed = defaultImageExts
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			WriteError(w, r, http.StatusBadRequest, "bad_multipart", err.Error())
			return
		}

		files := r.MultipartForm.File["images"]
		if len(files) == 0 {
			WriteError(w, r, http.StatusBadRequest, "no_files", "no images in request")
			return
		}

		now := time.Now().UnixMilli()
		var stored []string
		for i, fh := range files {
			if fh.Size > maxBytes {
				WriteError(w, r, http.StatusRequestEntityTooLarge, "too_large",
					fmt.Sprintf("%s exceeds %d MB", fh.Filename, maxMB))
				return
			}
			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), "."))
			if !extAllowed(ext, allowed) {
				WriteError(w, r, http.StatusBadRequest, "bad_extension",
					fmt.Sprintf("extension %q not allowed", ext))
				return
			}

			// the index keeps names distinct when several files land
			// in the same millisecond
			name := fmt.Sprintf("%d_%d_%d.%s", now, itemID, i, ext)
			path, err := h.saveOne(fh, name)
			if err != nil {
				WriteError(w, r, http.StatusInternalServerError, "save_failed", err.Error())
				return
			}
			stored = append(stored, path)
		}

		if err := store.AppendImagePaths(r.Context(), h.DB, itemID, stored); err != nil {
			WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
			return
		}

		reqID := RequestIDFrom(r.Context())
		h.Hub.Publish(events.MakeEvent(reqID, events.TypeSourcesUpdated, 1,
			map[string]any{"item_id": itemID}))
		WriteJSON(w, http.StatusCreated, map[string]any{"ok": true, "paths": stored})
	}
}

func (h UploadsHandler) saveOne(fh *multipart.FileHeader, name string) (string, error) {
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	full := filepath.Join(h.UploadDir, name)
	dst, err := os.Create(full)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(full)
		return "", err
	}
	// stored path is relative to the upload dir; the static file
	// server mounts it under /uploads/
	return "uploads/" + name, nil
}

func extAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
