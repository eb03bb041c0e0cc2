package checkpoint_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valpere/hantran/internal/checkpoint"
)

func TestFileName(t *testing.T) {
	got := checkpoint.FileName("凡人修仙传 - 忘语", 42)
	want := "凡人修仙传 - 忘语 - Chunk_000042.txt"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFileName_SanitizesIdentity(t *testing.T) {
	got := checkpoint.FileName(`a/b\c:d?e`, 1)
	if filepath.Base(got) != got {
		t.Fatalf("name %q escapes the directory", got)
	}
	for _, forbidden := range []string{"/", `\`, ":", "?"} {
		if strings.Contains(got, forbidden) {
			t.Errorf("name %q still contains %q", got, forbidden)
		}
	}
}

func TestStore_SaveLoad(t *testing.T) {
	s, err := checkpoint.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Save("Doc - Author", 3, "translated text"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	text, ok, err := s.Load("Doc - Author", 3)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("expected chunk to be found")
	}
	if text != "translated text" {
		t.Errorf("got %q", text)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	s, err := checkpoint.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, ok, err := s.Load("Doc", 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Error("missing chunk reported as found")
	}
}

func TestStore_EmptyFileNotFound(t *testing.T) {
	dir := t.TempDir()
	s, err := checkpoint.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// A zero-byte file is a crashed write, not a completed chunk.
	if err := os.WriteFile(s.Path("Doc", 1), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, ok, err := s.Load("Doc", 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Error("empty chunk file reported as found")
	}
}

func TestStore_Clear(t *testing.T) {
	s, err := checkpoint.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for seq := 1; seq <= 3; seq++ {
		if err := s.Save("Doc", seq, "text"); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	// Clearing more than were written must not fail on the missing ones.
	if err := s.Clear("Doc", 5); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	for seq := 1; seq <= 3; seq++ {
		if _, ok, _ := s.Load("Doc", seq); ok {
			t.Errorf("chunk %d still present after Clear", seq)
		}
	}
}
