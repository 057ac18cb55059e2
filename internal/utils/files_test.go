package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSafeWriteFileCreatesDir(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "reports", "a.md")
	if err := SafeWriteFile(p, []byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("content = %q", b)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestContentHash(t *testing.T) {
	a := ContentHash([]byte("id,temp\n1,2\n"))
	b := ContentHash([]byte("id,temp\n1,2\n"))
	c := ContentHash([]byte("id,temp\n1,3\n"))
	if a != b {
		t.Fatalf("same bytes hashed differently: %s vs %s", a, b)
	}
	if a == c {
		t.Fatalf("different bytes share a hash")
	}
	if !strings.HasPrefix(a, "sha256:") || len(a) != len("sha256:")+64 {
		t.Fatalf("hash = %q", a)
	}
}
