package preview

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"testing"
	"time"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func memFS(files map[string][]byte) (open func(string) (io.Reader, error), listDir func(string) ([]string, error)) {
	open = func(name string) (io.Reader, error) {
		b, ok := files[name]
		if !ok {
			return nil, errNotFound(name)
		}
		return bytes.NewReader(b), nil
	}
	dirs := map[string][]string{}
	for name := range files {
		dirs["ships"] = append(dirs["ships"], name)
	}
	listDir = func(dir string) ([]string, error) { return dirs[dir], nil }
	return
}

type errNotFound string

func (e errNotFound) Error() string { return "not found: " + string(e) }

func drain(t *testing.T, s *Scanner, timeout time.Duration) []Result {
	t.Helper()
	var out []Result
	deadline := time.After(timeout)
	for {
		select {
		case r := <-s.Results():
			out = append(out, r)
			if r.Done {
				return out
			}
		case <-deadline:
			t.Fatal("timed out waiting for scan results")
		}
	}
}

func TestScannerEmitsOneResultPerShipThenDone(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	open, listDir := memFS(map[string][]byte{
		"ships/a.png": encodePNG(t, img),
		"ships/b.png": encodePNG(t, img),
	})

	s := Start(open, listDir)
	defer s.Stop()

	s.SetDirectory("ships")
	results := drain(t, s, time.Second)

	var shipResults int
	for _, r := range results {
		if r.Path != "" {
			shipResults++
			if r.Err != nil {
				t.Fatalf("unexpected decode error for %s: %v", r.Path, r.Err)
			}
		}
	}
	if shipResults != 2 {
		t.Fatalf("expected 2 ship results, got %d (of %d total)", shipResults, len(results))
	}
	if !results[len(results)-1].Done {
		t.Fatal("expected final result to be Done")
	}
}

func TestScannerReportsDecodeErrorsWithoutAbortingTheDirectory(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	open, listDir := memFS(map[string][]byte{
		"ships/a.png":   encodePNG(t, img),
		"ships/bad.png": []byte("not a png"),
	})

	s := Start(open, listDir)
	defer s.Stop()

	s.SetDirectory("ships")
	results := drain(t, s, time.Second)

	var errs, ok int
	for _, r := range results {
		if r.Path == "" {
			continue
		}
		if r.Err != nil {
			errs++
		} else {
			ok++
		}
	}
	if errs != 1 || ok != 1 {
		t.Fatalf("expected 1 error and 1 ok result, got errs=%d ok=%d", errs, ok)
	}
}
