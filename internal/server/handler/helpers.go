package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/epinal/sharpline/internal/domain"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// writeJSON encodes v to the response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseListOpts reads limit and offset query parameters, clamping the limit
// and ignoring unparseable values.
func parseListOpts(r *http.Request) domain.ListOpts {
	q := r.URL.Query()
	return domain.ListOpts{
		Limit:  clampedInt(q.Get("limit"), defaultListLimit, 1, maxListLimit),
		Offset: clampedInt(q.Get("offset"), 0, 0, int(^uint(0)>>1)),
	}
}

func clampedInt(raw string, def, lo, hi int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo {
		return def
	}
	if n > hi {
		return hi
	}
	return n
}

// pathParam reads a Go 1.22 route pattern variable.
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}
