package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()
	if size <= 0 {
		size = 1
	}
	writeWithPrefix(t, path, nil, size)
}

// WriteImage writes a file that starts with a PNG signature and pads it to
// size bytes, enough for extension and content sniffing to agree.
func WriteImage(t testing.TB, path string, size int64) {
	t.Helper()
	if size < int64(len(pngSignature)) {
		size = int64(len(pngSignature))
	}
	writeWithPrefix(t, path, pngSignature, size)
}

func writeWithPrefix(t testing.TB, path string, prefix []byte, size int64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if _, err := f.Write(prefix); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size - int64(len(prefix))
	for remaining > 0 {
		toWrite := min(int64(chunkSize), remaining)
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}
