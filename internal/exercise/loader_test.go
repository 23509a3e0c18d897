package exercise

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/codelab/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader("/exercises")
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if got := loader.BasePath(); got != "/exercises" {
		t.Errorf("BasePath() = %q, want %q", got, "/exercises")
	}
}

func TestLoader_LoadPack(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "test-pack", "pack.yaml"), `id: test-pack
name: Test Pack
version: "1.0.0"
description: A test exercise pack
language: Python
exercises:
  - first
  - second
`)

	pack, err := NewLoader(tmpDir).LoadPack("test-pack")
	if err != nil {
		t.Fatalf("LoadPack() error = %v", err)
	}

	if pack.ID != "test-pack" {
		t.Errorf("pack.ID = %q, want test-pack", pack.ID)
	}
	if pack.Name != "Test Pack" {
		t.Errorf("pack.Name = %q, want Test Pack", pack.Name)
	}
	if pack.Language != "Python" {
		t.Errorf("pack.Language = %q, want Python", pack.Language)
	}
	if len(pack.ExerciseIDs) != 2 || pack.ExerciseIDs[0] != "first" {
		t.Errorf("pack.ExerciseIDs = %v", pack.ExerciseIDs)
	}
}

func TestLoader_LoadPack_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "broken", "pack.yaml"), "exercises: [unclosed")

	loader := NewLoader(tmpDir)

	if _, err := loader.LoadPack("missing"); err == nil {
		t.Error("LoadPack() should fail for a missing pack")
	}
	if _, err := loader.LoadPack("broken"); err == nil {
		t.Error("LoadPack() should fail for invalid YAML")
	}
}

func TestLoader_LoadExercise(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "pack-dir", "pack.yaml"), `id: renamed-pack
language: Python
exercises: [greet]
`)
	writeFile(t, filepath.Join(tmpDir, "pack-dir", "greet.yaml"), `title: Greet
difficulty: beginner
description: |
  Say hello.
starter: |
  # code
expected_output: |
  hi
`)

	loader := NewLoader(tmpDir)
	pack, err := loader.LoadPack("pack-dir")
	if err != nil {
		t.Fatalf("LoadPack() error = %v", err)
	}

	ex, err := loader.LoadExercise(pack, "greet")
	if err != nil {
		t.Fatalf("LoadExercise() error = %v", err)
	}

	if ex.ID != "greet" {
		t.Errorf("ID = %q, want slug fallback greet", ex.ID)
	}
	if ex.Language != "Python" {
		t.Errorf("Language = %q, want pack default Python", ex.Language)
	}
	if ex.Description != "Say hello." {
		t.Errorf("Description = %q, want trimmed text", ex.Description)
	}
	if ex.ExpectedOutput != "hi" {
		t.Errorf("ExpectedOutput = %q, want hi", ex.ExpectedOutput)
	}
	if ex.StarterCode != "# code\n" {
		t.Errorf("StarterCode = %q, want untouched block", ex.StarterCode)
	}
	if ex.Hints == nil || len(ex.Hints) != 0 {
		t.Errorf("Hints = %#v, want empty non-nil slice", ex.Hints)
	}
	if ex.Completed {
		t.Error("loaded exercises must start not completed")
	}
}

func TestLoader_LoadExercise_RejectsBadSlug(t *testing.T) {
	loader := NewLoader(t.TempDir())
	pack := &Pack{ID: "p"}

	for _, slug := range []string{"", "../etc/passwd", "a/../../b"} {
		if _, err := loader.LoadExercise(pack, slug); err == nil {
			t.Errorf("LoadExercise(%q) should fail", slug)
		}
	}
}

func TestLoader_LoadAllPacks(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "zeta", "pack.yaml"), "id: zeta\nexercises: []\n")
	writeFile(t, filepath.Join(tmpDir, "alpha", "pack.yaml"), "id: alpha\nexercises: []\n")
	writeFile(t, filepath.Join(tmpDir, "not-a-pack", "readme.txt"), "ignored")
	writeFile(t, filepath.Join(tmpDir, "loose.yaml"), "ignored: true")

	packs, err := NewLoader(tmpDir).LoadAllPacks()
	if err != nil {
		t.Fatalf("LoadAllPacks() error = %v", err)
	}

	if len(packs) != 2 {
		t.Fatalf("len(packs) = %d, want 2", len(packs))
	}
	if packs[0].ID != "alpha" || packs[1].ID != "zeta" {
		t.Errorf("packs not sorted: %s, %s", packs[0].ID, packs[1].ID)
	}
}

func TestLoader_LoadAllPacks_MissingDir(t *testing.T) {
	if _, err := NewLoader(filepath.Join(t.TempDir(), "nope")).LoadAllPacks(); err == nil {
		t.Error("LoadAllPacks() should fail for a missing directory")
	}
}

func TestLoader_LoadPackExercises_BundledPack(t *testing.T) {
	loader := NewLoader(filepath.Join("..", "..", "exercises"))

	exercises, err := loader.LoadPackExercises("codelab-python")
	if err != nil {
		t.Fatalf("LoadPackExercises() error = %v", err)
	}

	builtin := Builtin()
	if len(exercises) != len(builtin) {
		t.Fatalf("len(exercises) = %d, want %d", len(exercises), len(builtin))
	}
	for i := range builtin {
		got, want := exercises[i], builtin[i]
		if got.ID != want.ID {
			t.Errorf("[%d] ID = %q, want %q", i, got.ID, want.ID)
		}
		if got.ExpectedOutput != want.ExpectedOutput {
			t.Errorf("[%d] ExpectedOutput = %q, want %q", i, got.ExpectedOutput, want.ExpectedOutput)
		}
		if got.Difficulty != want.Difficulty {
			t.Errorf("[%d] Difficulty = %q, want %q", i, got.Difficulty, want.Difficulty)
		}
		if err := got.Validate(); err != nil {
			t.Errorf("[%d] Validate() error = %v", i, err)
		}
	}
}

func TestLoader_LoadPackExercises_MissingExercise(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "p", "pack.yaml"), "id: p\nexercises: [ghost]\n")

	_, err := NewLoader(tmpDir).LoadPackExercises("p")
	if err == nil {
		t.Fatal("LoadPackExercises() should fail when an exercise file is missing")
	}
	if errors.Is(err, domain.ErrExerciseNotFound) {
		t.Error("missing files surface as read errors, not catalog lookups")
	}
}
