package exports

import (
	"archive/zip"
	"bytes"
	"image/jpeg"
	"testing"
)

func archiveEntries(t *testing.T, buf *bytes.Buffer) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	entries := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		var data bytes.Buffer
		if _, err := data.ReadFrom(rc); err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}
		rc.Close()
		entries[f.Name] = data.Bytes()
	}
	return entries
}

func TestArchiveRendererNamesEntriesByInputPosition(t *testing.T) {
	e, _, srv := newTestExporter(t)
	r := &archiveRenderer{exporter: e}

	buf, items, err := r.Render([]string{srv.URL + "/red.png", srv.URL + "/blue.png"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if successCount(items) != 2 {
		t.Fatalf("expected 2 entries, items: %+v", items)
	}

	entries := archiveEntries(t, buf)
	if len(entries) != 2 {
		t.Fatalf("expected exactly 2 entries, got %d", len(entries))
	}
	for _, name := range []string{"slide_001.jpg", "slide_002.jpg"} {
		if _, ok := entries[name]; !ok {
			t.Errorf("missing entry %s", name)
		}
	}
}

func TestArchiveRendererSkippedImageLeavesGap(t *testing.T) {
	e, _, srv := newTestExporter(t)
	r := &archiveRenderer{exporter: e}

	buf, items, err := r.Render([]string{
		srv.URL + "/red.png",
		srv.URL + "/missing.png",
		srv.URL + "/blue.png",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if successCount(items) != 2 {
		t.Fatalf("expected 2 entries, items: %+v", items)
	}

	entries := archiveEntries(t, buf)
	if _, ok := entries["slide_001.jpg"]; !ok {
		t.Error("missing entry slide_001.jpg")
	}
	if _, ok := entries["slide_002.jpg"]; ok {
		t.Error("skipped image must not produce an entry")
	}
	if _, ok := entries["slide_003.jpg"]; !ok {
		t.Error("surviving image keeps its input position ordinal")
	}
}

func TestArchiveRendererFlattensAlpha(t *testing.T) {
	e, _, srv := newTestExporter(t)
	r := &archiveRenderer{exporter: e}

	buf, _, err := r.Render([]string{srv.URL + "/transparent.png"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	entries := archiveEntries(t, buf)
	data, ok := entries["slide_001.jpg"]
	if !ok {
		t.Fatal("missing entry slide_001.jpg")
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	r8, g8, b8, a8 := img.At(0, 0).RGBA()
	if a8 != 0xffff {
		t.Fatalf("expected opaque output, alpha %d", a8)
	}
	// Transparent source composited onto white; allow lossy wiggle room
	const floor = 0xf000
	if r8 < floor || g8 < floor || b8 < floor {
		t.Fatalf("expected near-white pixel, got rgb(%d,%d,%d)", r8, g8, b8)
	}
}

func TestArchiveRendererAllFailed(t *testing.T) {
	e, _, srv := newTestExporter(t)
	r := &archiveRenderer{exporter: e}

	if _, _, err := r.Render([]string{srv.URL + "/missing.png"}); err == nil {
		t.Fatal("expected an error when the archive would be empty")
	}
}
