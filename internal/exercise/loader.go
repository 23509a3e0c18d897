package exercise

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/felixgeelhaar/codelab/internal/domain"
	"gopkg.in/yaml.v3"
)

// PackFile represents the YAML structure for an exercise pack
type PackFile struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description"`
	Language    string   `yaml:"language"`
	Exercises   []string `yaml:"exercises"`
}

// ExerciseFile represents the YAML structure for an exercise
type ExerciseFile struct {
	ID             string   `yaml:"id"`
	Title          string   `yaml:"title"`
	Description    string   `yaml:"description"`
	Difficulty     string   `yaml:"difficulty"`
	Language       string   `yaml:"language"`
	Starter        string   `yaml:"starter"`
	ExpectedOutput string   `yaml:"expected_output"`
	Hints          []string `yaml:"hints"`
}

// Pack is an ordered collection of exercises sharing a default language
type Pack struct {
	ID          string
	Name        string
	Version     string
	Description string
	Language    string
	ExerciseIDs []string // ordered list of exercise slugs

	dir string
}

// Loader handles loading exercises from YAML files
type Loader struct {
	basePath string
}

// NewLoader creates a new exercise loader
func NewLoader(basePath string) *Loader {
	return &Loader{basePath: basePath}
}

// BasePath returns the directory packs are read from
func (l *Loader) BasePath() string {
	return l.basePath
}

// LoadPack loads an exercise pack from a directory
func (l *Loader) LoadPack(packID string) (*Pack, error) {
	packPath := filepath.Join(l.basePath, packID, "pack.yaml")

	data, err := os.ReadFile(packPath)
	if err != nil {
		return nil, fmt.Errorf("read pack file: %w", err)
	}

	var packFile PackFile
	if err := yaml.Unmarshal(data, &packFile); err != nil {
		return nil, fmt.Errorf("parse pack file: %w", err)
	}

	id := packFile.ID
	if id == "" {
		id = packID
	}

	pack := &Pack{
		ID:          id,
		Name:        packFile.Name,
		Version:     packFile.Version,
		Description: packFile.Description,
		Language:    packFile.Language,
		ExerciseIDs: make([]string, len(packFile.Exercises)),
		dir:         packID,
	}
	copy(pack.ExerciseIDs, packFile.Exercises)

	return pack, nil
}

// LoadExercise loads a single exercise from a YAML file.
// The pack language is used when the exercise does not name its own.
func (l *Loader) LoadExercise(pack *Pack, slug string) (*domain.Exercise, error) {
	if slug == "" || strings.Contains(slug, "..") {
		return nil, fmt.Errorf("invalid exercise slug: %q", slug)
	}

	dir := pack.dir
	if dir == "" {
		dir = pack.ID
	}
	exercisePath := filepath.Join(l.basePath, dir, slug+".yaml")

	data, err := os.ReadFile(exercisePath)
	if err != nil {
		return nil, fmt.Errorf("read exercise file: %w", err)
	}

	var exFile ExerciseFile
	if err := yaml.Unmarshal(data, &exFile); err != nil {
		return nil, fmt.Errorf("parse exercise file: %w", err)
	}

	id := exFile.ID
	if id == "" {
		id = slug
	}
	language := exFile.Language
	if language == "" {
		language = pack.Language
	}

	ex := &domain.Exercise{
		ID:             id,
		Title:          exFile.Title,
		Description:    strings.TrimSpace(exFile.Description),
		Difficulty:     domain.Difficulty(exFile.Difficulty),
		Language:       language,
		StarterCode:    exFile.Starter,
		ExpectedOutput: strings.TrimRight(exFile.ExpectedOutput, "\n"),
		Hints:          exFile.Hints,
	}
	if ex.Hints == nil {
		ex.Hints = []string{}
	}

	return ex, nil
}

// LoadAllPacks loads all exercise packs from the base directory, sorted by ID
func (l *Loader) LoadAllPacks() ([]*Pack, error) {
	entries, err := os.ReadDir(l.basePath)
	if err != nil {
		return nil, fmt.Errorf("read exercises directory: %w", err)
	}

	var packs []*Pack
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		packPath := filepath.Join(l.basePath, entry.Name(), "pack.yaml")
		if _, err := os.Stat(packPath); os.IsNotExist(err) {
			continue
		}

		pack, err := l.LoadPack(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("load pack %s: %w", entry.Name(), err)
		}
		packs = append(packs, pack)
	}

	sort.Slice(packs, func(i, j int) bool { return packs[i].ID < packs[j].ID })
	return packs, nil
}

// LoadPackExercises loads all exercises for a pack in pack order
func (l *Loader) LoadPackExercises(packID string) ([]domain.Exercise, error) {
	pack, err := l.LoadPack(packID)
	if err != nil {
		return nil, err
	}

	exercises := make([]domain.Exercise, 0, len(pack.ExerciseIDs))
	for _, slug := range pack.ExerciseIDs {
		ex, err := l.LoadExercise(pack, slug)
		if err != nil {
			return nil, fmt.Errorf("load exercise %s/%s: %w", packID, slug, err)
		}
		exercises = append(exercises, *ex)
	}

	return exercises, nil
}
