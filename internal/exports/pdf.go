package exports

import (
	"bytes"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/signintech/gopdf"
)

// documentRenderer paints one PDF page per source image. Page geometry comes
// from the pixel dimensions of the first image that fetches successfully;
// every later image is stretched to that same page size.
type documentRenderer struct {
	exporter *Exporter
}

func (r *documentRenderer) Render(urls []string) (*bytes.Buffer, []ItemStatus, error) {
	items := make([]ItemStatus, 0, len(urls))

	var (
		pdf      *gopdf.GoPdf
		pageSize gopdf.Rect
		painted  int
	)

	for _, rawURL := range urls {
		src, err := r.exporter.fetcher.FetchImage(rawURL)
		if err != nil {
			log.Warn().Str("url", rawURL).Err(err).Msg("skipping page, fetch failed")
			items = append(items, ItemStatus{URL: rawURL, Skipped: true, Reason: err.Error()})
			continue
		}

		if pdf == nil {
			pageSize = gopdf.Rect{W: float64(src.Width), H: float64(src.Height)}
			pdf = &gopdf.GoPdf{}
			pdf.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: pageSize})
		}

		tmpPath, err := r.exporter.stageTempFile(src.Image)
		if err != nil {
			log.Warn().Str("url", rawURL).Err(err).Msg("skipping page, temp staging failed")
			items = append(items, ItemStatus{URL: rawURL, Skipped: true, Reason: err.Error()})
			continue
		}

		pdf.AddPageWithOption(gopdf.PageOption{PageSize: &pageSize})
		if err := pdf.Image(tmpPath, 0, 0, &pageSize); err != nil {
			log.Warn().Str("url", rawURL).Err(err).Msg("skipping page, paint failed")
			items = append(items, ItemStatus{URL: rawURL, Skipped: true, Reason: err.Error()})
			continue
		}

		painted++
		items = append(items, ItemStatus{URL: rawURL})
	}

	if painted == 0 {
		return nil, items, ErrNothingRendered
	}

	buf := new(bytes.Buffer)
	if _, err := pdf.WriteTo(buf); err != nil {
		return nil, items, fmt.Errorf("write pdf: %w", err)
	}
	return buf, items, nil
}
