package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/epinal/sharpline/internal/domain"
)

const jsonContentType = "application/json"

// Archiver implements domain.SnapshotArchiver on top of a BlobWriter. Odds
// windows land under odds/{sport}/{date}/ and picks under picks/{date}/, both
// as JSON documents.
type Archiver struct {
	writer domain.BlobWriter
	logger *slog.Logger
}

// NewArchiver creates an Archiver that writes through the given BlobWriter.
func NewArchiver(writer domain.BlobWriter, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{
		writer: writer,
		logger: logger.With(slog.String("component", "archiver")),
	}
}

// ArchiveOddsSnapshot stores one fetched odds window and returns the object
// path. Successive windows on the same day get distinct paths via the fetch
// timestamp.
func (a *Archiver) ArchiveOddsSnapshot(ctx context.Context, snap domain.OddsSnapshot) (string, error) {
	path := fmt.Sprintf("odds/%s/%s/%s.json",
		snap.Sport,
		snap.FetchedAt.UTC().Format("20060102"),
		snap.FetchedAt.UTC().Format("150405"),
	)

	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("s3blob: marshal odds snapshot: %w", err)
	}

	if err := a.writer.Put(ctx, path, bytes.NewReader(data), jsonContentType); err != nil {
		return "", err
	}

	a.logger.Debug("archived odds snapshot",
		slog.String("path", path),
		slog.Int("games", len(snap.Games)))
	return path, nil
}

// ArchivePicks stores the pick slate for one date. The write replaces any
// previous document for that date, so callers must pass the full day's picks,
// not just the latest cycle's output.
func (a *Archiver) ArchivePicks(ctx context.Context, date string, picks []domain.Pick) (string, error) {
	path := fmt.Sprintf("picks/%s/picks.json", date)

	data, err := json.Marshal(picks)
	if err != nil {
		return "", fmt.Errorf("s3blob: marshal picks: %w", err)
	}

	if err := a.writer.Put(ctx, path, bytes.NewReader(data), jsonContentType); err != nil {
		return "", err
	}

	a.logger.Debug("archived picks",
		slog.String("path", path),
		slog.Int("count", len(picks)))
	return path, nil
}
