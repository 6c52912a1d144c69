package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// webmMagic is the EBML header id that opens every WebM file.
var webmMagic = []byte{0x1a, 0x45, 0xdf, 0xa3}

// WriteRawCapture creates a stand-in browser recording of size bytes at path,
// backdated by age. Parent directories are created as needed.
func WriteRawCapture(t testing.TB, path string, size int, age time.Duration) string {
	t.Helper()

	if size < len(webmMagic) {
		size = len(webmMagic)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	body := append(bytes.Clone(webmMagic), bytes.Repeat([]byte{0x42}, size-len(webmMagic))...)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if age > 0 {
		stamp := time.Now().Add(-age)
		if err := os.Chtimes(path, stamp, stamp); err != nil {
			t.Fatalf("chtimes %s: %v", path, err)
		}
	}
	return path
}
