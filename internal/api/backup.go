package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campuspos/m/domain"
)

func (h *Handler) backupCreate(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}

	f, err := os.Open(h.dbPath)
	if os.IsNotExist(err) {
		respondError(w, http.StatusNotFound, "database file not found")
		return
	}
	if err != nil {
		h.log.Error("unable to open database for backup", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to create backup")
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("store-backup-%s.db", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))
	}
	_, _ = io.Copy(w, f)
}

func (h *Handler) backupRestore(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "backup file is required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".db") {
		respondError(w, http.StatusBadRequest, "backup file must be a .db file")
		return
	}

	// Keep the live file around under a unique name so a bad upload can
	// be rolled back by hand.
	safety := filepath.Join(filepath.Dir(h.dbPath),
		fmt.Sprintf("pre-restore-%s.db", uuid.NewString()))
	if err := copyFile(h.dbPath, safety); err != nil && !os.IsNotExist(err) {
		h.log.Error("unable to copy live database aside", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to restore backup")
		return
	}

	dest, err := os.Create(h.dbPath)
	if err != nil {
		h.log.Error("unable to overwrite database", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to restore backup")
		return
	}
	defer dest.Close()
	if _, err := io.Copy(dest, file); err != nil {
		h.log.Error("unable to write restored database", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to restore backup")
		return
	}

	h.log.Info("database restored from backup",
		zap.String("uploaded", header.Filename),
		zap.String("previous_copy", safety))
	respondJSON(w, http.StatusOK, map[string]string{
		"status":        "restored",
		"previous_copy": safety,
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
