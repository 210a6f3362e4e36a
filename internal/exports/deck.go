package exports

import (
	"bytes"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// deckRenderer produces one blank-layout slide per source image. Every image
// fills the whole 10x7.5in slide; aspect ratio is intentionally not
// preserved. Images are staged through ledger-tracked temp files before
// being embedded, mirroring the document renderer's resource pattern.
type deckRenderer struct {
	exporter *Exporter
}

func (r *deckRenderer) Render(urls []string) (*bytes.Buffer, []ItemStatus, error) {
	items := make([]ItemStatus, 0, len(urls))
	var pictures [][]byte

	for _, rawURL := range urls {
		src, err := r.exporter.fetcher.FetchImage(rawURL)
		if err != nil {
			log.Warn().Str("url", rawURL).Err(err).Msg("skipping slide, fetch failed")
			items = append(items, ItemStatus{URL: rawURL, Skipped: true, Reason: err.Error()})
			continue
		}

		tmpPath, err := r.exporter.stageTempFile(src.Image)
		if err != nil {
			log.Warn().Str("url", rawURL).Err(err).Msg("skipping slide, temp staging failed")
			items = append(items, ItemStatus{URL: rawURL, Skipped: true, Reason: err.Error()})
			continue
		}

		picture, err := os.ReadFile(tmpPath)
		if err != nil {
			log.Warn().Str("url", rawURL).Err(err).Msg("skipping slide, staged file unreadable")
			items = append(items, ItemStatus{URL: rawURL, Skipped: true, Reason: err.Error()})
			continue
		}

		pictures = append(pictures, picture)
		items = append(items, ItemStatus{URL: rawURL})
	}

	if len(pictures) == 0 {
		return nil, items, ErrNothingRendered
	}

	buf, err := buildDeck(pictures)
	if err != nil {
		return nil, items, fmt.Errorf("assemble deck: %w", err)
	}
	return buf, items, nil
}
