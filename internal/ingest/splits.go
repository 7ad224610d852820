package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/epinal/sharpline/internal/domain"
)

// splitsFile is the on-disk shape of the public betting splits feed. The
// file maps game IDs to per-market public percentages plus ATS records.
type splitsFile map[string]splitsEntry

type splitsEntry struct {
	Spread struct {
		Home *float64 `json:"home"`
	} `json:"spread"`
	Total struct {
		Over *float64 `json:"over"`
	} `json:"total"`
	ML struct {
		Home *float64 `json:"home"`
	} `json:"ml"`
	ATS struct {
		Home string `json:"home"`
		Away string `json:"away"`
	} `json:"ats"`
}

// SplitsLoader reads public betting splits from a JSON file refreshed by an
// external scraper or manual export.
type SplitsLoader struct {
	path   string
	logger *slog.Logger
}

// NewSplitsLoader returns a loader for the splits file at path.
func NewSplitsLoader(path string, logger *slog.Logger) *SplitsLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &SplitsLoader{
		path:   path,
		logger: logger.With(slog.String("component", "splits_loader")),
	}
}

// Load parses the splits file and returns the entries keyed by game ID. A
// missing file is not an error: the pipeline runs without splits and every
// public percentage defaults downstream.
func (l *SplitsLoader) Load() (map[string]domain.PublicSplits, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("splits file not found, continuing without public splits",
				slog.String("path", l.path))
			return map[string]domain.PublicSplits{}, nil
		}
		return nil, fmt.Errorf("read splits file %s: %w", l.path, err)
	}

	var file splitsFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse splits file %s: %w", l.path, err)
	}

	out := make(map[string]domain.PublicSplits, len(file))
	for gameID, e := range file {
		out[gameID] = domain.PublicSplits{
			GameID:     gameID,
			SpreadHome: e.Spread.Home,
			TotalOver:  e.Total.Over,
			MLHome:     e.ML.Home,
			HomeATSL10: e.ATS.Home,
			AwayATSL10: e.ATS.Away,
		}
	}

	l.logger.Debug("loaded public splits", slog.Int("games", len(out)))
	return out, nil
}
