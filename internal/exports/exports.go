package exports

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/pwnholic/slideconv/internal/clients"
	"github.com/pwnholic/slideconv/internal/ledger"
)

const (
	FormatPDF = "pdf"
	FormatPPT = "ppt"
	FormatZIP = "zip"
)

var (
	// ErrNoImages rejects a request whose image list is empty.
	ErrNoImages = errors.New("no images provided")

	// ErrUnknownFormat rejects a format outside pdf, ppt, zip.
	ErrUnknownFormat = errors.New("invalid format, must be pdf, ppt or zip")

	// ErrNothingRendered means every source image failed. An empty artifact
	// is never returned as success, whatever the format.
	ErrNothingRendered = errors.New("no images could be rendered")
)

// ItemStatus records the fate of one source image within a render, in input
// order, so partial failure is observable without reading logs.
type ItemStatus struct {
	URL     string `json:"url"`
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
}

type renderer interface {
	Render(urls []string) (*bytes.Buffer, []ItemStatus, error)
}

// ConversionRequest is the inbound conversion order. Images must be
// non-empty and Format one of pdf, ppt, zip (empty defaults to pdf).
type ConversionRequest struct {
	Images []string `json:"images"`
	Title  string   `json:"title"`
	Format string   `json:"format"`
}

// Artifact is a finished conversion ready for transmission.
type Artifact struct {
	Buffer      *bytes.Buffer
	ContentType string
	Filename    string
	Items       []ItemStatus
}

// Exporter validates conversion requests, dispatches them to the matching
// renderer and registers every produced buffer with the ledger for deferred
// reclamation.
type Exporter struct {
	fetcher *clients.ClientRequest
	ledger  *ledger.Ledger
	tempDir string
}

func NewExporter(fetcher *clients.ClientRequest, reg *ledger.Ledger, tempDir string) *Exporter {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Exporter{fetcher: fetcher, ledger: reg, tempDir: tempDir}
}

// Convert runs one conversion start to finish. Per-image failures show up in
// Artifact.Items; only whole-request failures return an error.
func (e *Exporter) Convert(req *ConversionRequest) (*Artifact, error) {
	if len(req.Images) == 0 {
		return nil, ErrNoImages
	}

	title := req.Title
	if title == "" {
		title = "Presentation"
	}
	format := strings.ToLower(req.Format)
	if format == "" {
		format = FormatPDF
	}

	var (
		r           renderer
		ext         string
		contentType string
	)
	switch format {
	case FormatPDF:
		r = &documentRenderer{exporter: e}
		ext, contentType = "pdf", "application/pdf"
	case FormatPPT:
		r = &deckRenderer{exporter: e}
		ext, contentType = "pptx", "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case FormatZIP:
		r = &archiveRenderer{exporter: e}
		ext, contentType = "zip", "application/zip"
	default:
		return nil, ErrUnknownFormat
	}

	buf, items, err := r.Render(req.Images)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}

	e.ledger.Register(ledger.BufferResource{Buf: buf})

	return &Artifact{
		Buffer:      buf,
		ContentType: contentType,
		Filename:    fmt.Sprintf("%s.%s", title, ext),
		Items:       items,
	}, nil
}

// stageTempFile writes a JPEG rendition of img to a fresh temp file and
// registers it with the ledger. The caller may read the file until the
// sweeper reclaims it.
func (e *Exporter) stageTempFile(img image.Image) (string, error) {
	path := filepath.Join(e.tempDir, fmt.Sprintf("slideconv-%s.jpg", uuid.NewString()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, flattenAlpha(img), &jpeg.Options{Quality: 95}); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("encode temp image: %w", err)
	}

	e.ledger.Register(ledger.FileResource{Path: path})
	return path, nil
}

// flattenAlpha composites img onto an opaque white background when it
// carries an alpha channel; JPEG has no transparency.
func flattenAlpha(img image.Image) image.Image {
	if opaque, ok := img.(interface{ Opaque() bool }); ok && opaque.Opaque() {
		return img
	}
	bg := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
