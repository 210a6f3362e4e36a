package exports

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/rs/zerolog/log"
)

// archiveRenderer writes each surviving image straight into a compressed zip
// as a quality-95 JPEG. No temp files; per-image buffers die with the loop
// iteration instead of going through the ledger.
type archiveRenderer struct {
	exporter *Exporter
}

func (r *archiveRenderer) Render(urls []string) (*bytes.Buffer, []ItemStatus, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	items := make([]ItemStatus, 0, len(urls))
	var added int

	for i, rawURL := range urls {
		src, err := r.exporter.fetcher.FetchImage(rawURL)
		if err != nil {
			log.Warn().Str("url", rawURL).Err(err).Msg("skipping entry, fetch failed")
			items = append(items, ItemStatus{URL: rawURL, Skipped: true, Reason: err.Error()})
			continue
		}

		// Ordinals follow input position, so a skipped image leaves a gap
		// rather than renumbering the survivors.
		name := fmt.Sprintf("slide_%03d.jpg", i+1)
		w, err := zw.Create(name)
		if err != nil {
			log.Warn().Str("url", rawURL).Err(err).Msg("skipping entry, archive write failed")
			items = append(items, ItemStatus{URL: rawURL, Skipped: true, Reason: err.Error()})
			continue
		}
		if err := jpeg.Encode(w, flattenAlpha(src.Image), &jpeg.Options{Quality: 95}); err != nil {
			log.Warn().Str("url", rawURL).Err(err).Msg("skipping entry, encode failed")
			items = append(items, ItemStatus{URL: rawURL, Skipped: true, Reason: err.Error()})
			continue
		}

		added++
		items = append(items, ItemStatus{URL: rawURL})
	}

	if err := zw.Close(); err != nil {
		return nil, items, fmt.Errorf("close archive: %w", err)
	}
	if added == 0 {
		return nil, items, ErrNothingRendered
	}
	return buf, items, nil
}
