package handler

import (
	"errors"
	"io"
	"net/http"
	"regexp"

	"github.com/epinal/sharpline/internal/domain"
)

var datePattern = regexp.MustCompile(`^\d{8}$`)

// ArchiveHandler serves archived pick sheets and odds-snapshot listings out
// of cold storage. Only mounted when object storage is configured.
type ArchiveHandler struct {
	reader domain.BlobReader
}

// NewArchiveHandler creates an ArchiveHandler backed by the given reader.
func NewArchiveHandler(reader domain.BlobReader) *ArchiveHandler {
	return &ArchiveHandler{reader: reader}
}

// GetArchivedPicks handles GET /api/archive/picks/{date}. It streams the
// stored pick sheet for a YYYYMMDD date as-is; the archive already holds
// JSON.
func (h *ArchiveHandler) GetArchivedPicks(w http.ResponseWriter, r *http.Request) {
	date := pathParam(r, "date")
	if !datePattern.MatchString(date) {
		writeError(w, http.StatusBadRequest, "date must be YYYYMMDD")
		return
	}

	body, err := h.reader.Get(r.Context(), "picks/"+date+"/picks.json")
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no archived picks for "+date)
			return
		}
		writeError(w, http.StatusBadGateway, "archive unavailable")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	io.Copy(w, body)
}

type archiveObject struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
}

// ListSnapshots handles GET /api/archive/snapshots. An optional ?date=YYYYMMDD
// narrows the listing to one day; ?sport= defaults to every sport.
func (h *ArchiveHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	prefix := "odds/"
	if sport := r.URL.Query().Get("sport"); sport != "" {
		prefix += sport + "/"
		if date := r.URL.Query().Get("date"); date != "" {
			if !datePattern.MatchString(date) {
				writeError(w, http.StatusBadRequest, "date must be YYYYMMDD")
				return
			}
			prefix += date + "/"
		}
	}

	infos, err := h.reader.List(r.Context(), prefix)
	if err != nil {
		writeError(w, http.StatusBadGateway, "archive unavailable")
		return
	}

	objects := make([]archiveObject, 0, len(infos))
	for _, info := range infos {
		objects = append(objects, archiveObject{
			Path:         info.Path,
			Size:         info.Size,
			LastModified: info.LastModified.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"objects": objects, "total": len(objects)})
}
