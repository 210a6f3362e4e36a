package exports

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pwnholic/slideconv/internal/clients"
	"github.com/pwnholic/slideconv/internal/ledger"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture png: %v", err)
	}
	return buf.Bytes()
}

// newImageServer serves the image fixtures every renderer test fetches from.
func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/red.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes(t, 4, 6, color.NRGBA{R: 255, A: 255}))
	})
	mux.HandleFunc("/blue.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes(t, 8, 4, color.NRGBA{B: 255, A: 255}))
	})
	mux.HandleFunc("/transparent.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes(t, 2, 2, color.NRGBA{}))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestExporter(t *testing.T) (*Exporter, *ledger.Ledger, *httptest.Server) {
	t.Helper()
	srv := newImageServer(t)
	fetcher := clients.NewClientRequest(&clients.HTTPClientOptions{
		Timeout:   5 * time.Second,
		UserAgent: clients.RandomUserAgent(),
	})
	reg := ledger.New(time.Hour)
	return NewExporter(fetcher, reg, t.TempDir()), reg, srv
}

func successCount(items []ItemStatus) int {
	var n int
	for _, item := range items {
		if !item.Skipped {
			n++
		}
	}
	return n
}

func TestConvertRejectsEmptyImageList(t *testing.T) {
	e, reg, _ := newTestExporter(t)

	_, err := e.Convert(&ConversionRequest{Images: nil, Format: "pdf"})
	if !errors.Is(err, ErrNoImages) {
		t.Fatalf("expected ErrNoImages, got %v", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("expected nothing registered, ledger has %d", reg.Len())
	}
}

func TestConvertRejectsUnknownFormat(t *testing.T) {
	e, _, srv := newTestExporter(t)

	_, err := e.Convert(&ConversionRequest{Images: []string{srv.URL + "/red.png"}, Format: "docx"})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestConvertDefaults(t *testing.T) {
	e, _, srv := newTestExporter(t)

	artifact, err := e.Convert(&ConversionRequest{Images: []string{srv.URL + "/red.png"}})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if artifact.Filename != "Presentation.pdf" {
		t.Fatalf("expected default filename Presentation.pdf, got %q", artifact.Filename)
	}
	if artifact.ContentType != "application/pdf" {
		t.Fatalf("expected default pdf content type, got %q", artifact.ContentType)
	}
}

func TestConvertDerivesFilenameFromTitle(t *testing.T) {
	e, _, srv := newTestExporter(t)

	artifact, err := e.Convert(&ConversionRequest{
		Images: []string{srv.URL + "/red.png"},
		Title:  "Holiday",
		Format: "ZIP",
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if artifact.Filename != "Holiday.zip" {
		t.Fatalf("expected Holiday.zip, got %q", artifact.Filename)
	}
	if artifact.ContentType != "application/zip" {
		t.Fatalf("expected zip content type, got %q", artifact.ContentType)
	}
}

func TestConvertRegistersOutputBuffer(t *testing.T) {
	e, reg, srv := newTestExporter(t)

	before := reg.Len()
	if _, err := e.Convert(&ConversionRequest{Images: []string{srv.URL + "/red.png"}, Format: "zip"}); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if reg.Len() != before+1 {
		t.Fatalf("expected output buffer registered, ledger went %d -> %d", before, reg.Len())
	}
}

func TestConvertFailsWhenNothingRendered(t *testing.T) {
	e, _, srv := newTestExporter(t)
	unreachable := srv.URL + "/missing.png"

	for _, format := range []string{"pdf", "ppt", "zip"} {
		t.Run(format, func(t *testing.T) {
			_, err := e.Convert(&ConversionRequest{Images: []string{unreachable}, Format: format})
			if !errors.Is(err, ErrNothingRendered) {
				t.Fatalf("expected ErrNothingRendered, got %v", err)
			}
		})
	}
}

func TestFlattenAlphaPaintsWhiteBackground(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	flat := flattenAlpha(img)

	r, g, b, a := flat.At(0, 0).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff || a != 0xffff {
		t.Fatalf("expected opaque white, got rgba(%d,%d,%d,%d)", r, g, b, a)
	}
}
