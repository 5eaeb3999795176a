package blob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCleanKey(t *testing.T) {
	cases := map[string]string{
		"a/b.txt":         "a/b.txt",
		"../../etc/pwd":   "etc/pwd",
		`up\..\notes.pdf`: "notes.pdf",
		"/abs/x":          "abs/x",
	}
	for in, want := range cases {
		got, err := CleanKey(in)
		if err != nil || got != want {
			t.Fatalf("CleanKey(%q) got=%q err=%v want=%q", in, got, err, want)
		}
	}
	if _, err := CleanKey("/"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey got=%v", err)
	}
}

func TestLocal_Put(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/files/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	u, err := l.Put(context.Background(), "up1/my notes.txt", strings.NewReader("hello"), "text/plain")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if u != "/files/up1/my%20notes.txt" {
		t.Fatalf("url got=%q", u)
	}
	data, err := os.ReadFile(filepath.Join(dir, "up1", "my notes.txt"))
	if err != nil || string(data) != "hello" {
		t.Fatalf("stored data=%q err=%v", data, err)
	}
}
