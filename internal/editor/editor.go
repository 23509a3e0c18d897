// Package editor holds the code buffer the learner types into.
package editor

import (
	"strings"
	"sync"
)

// Labels shown on the run control
const (
	RunLabel     = "Run Code"
	RunningLabel = "Running..."
)

// Editor owns one code buffer. The initial code fills the buffer once, when
// the editor is created; Retarget later changes what Reset restores to but
// never the buffer itself.
type Editor struct {
	mu       sync.RWMutex
	language string
	initial  string
	buffer   string
}

// New mounts an editor for language with initial as the starting buffer
func New(language, initial string) *Editor {
	return &Editor{
		language: language,
		initial:  initial,
		buffer:   initial,
	}
}

// Language returns the current language tag
func (e *Editor) Language() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.language
}

// SyntaxLanguage maps the language tag to a highlighter mode name
func (e *Editor) SyntaxLanguage() string {
	return SyntaxMode(e.Language())
}

// Retarget switches the language and the code Reset restores. The live
// buffer is kept.
func (e *Editor) Retarget(language, initial string) {
	e.mu.Lock()
	e.language = language
	e.initial = initial
	e.mu.Unlock()
}

// Buffer returns the live buffer contents
func (e *Editor) Buffer() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buffer
}

// SetBuffer replaces the buffer with what the learner typed
func (e *Editor) SetBuffer(code string) {
	e.mu.Lock()
	e.buffer = code
	e.mu.Unlock()
}

// Run hands the live buffer to onRun
func (e *Editor) Run(onRun func(code string)) {
	code := e.Buffer()
	if onRun != nil {
		onRun(code)
	}
}

// Reset restores the initial code and notifies onReset
func (e *Editor) Reset(onReset func()) {
	e.mu.Lock()
	e.buffer = e.initial
	e.mu.Unlock()

	if onReset != nil {
		onReset()
	}
}

// Dirty reports whether the buffer differs from the code Reset restores
func (e *Editor) Dirty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buffer != e.initial
}

// RunControl returns the run button label and whether it is disabled
func RunControl(running bool) (label string, disabled bool) {
	if running {
		return RunningLabel, true
	}
	return RunLabel, false
}

var syntaxModes = map[string]string{
	"c++":        "cpp",
	"c#":         "csharp",
	"golang":     "go",
	"js":         "javascript",
	"ts":         "typescript",
	"py":         "python",
	"shell":      "bash",
	"sh":         "bash",
	"plain text": "plaintext",
}

// SyntaxMode lowercases a language tag and resolves common aliases.
// Empty tags map to plaintext.
func SyntaxMode(language string) string {
	tag := strings.ToLower(strings.TrimSpace(language))
	if tag == "" {
		return "plaintext"
	}
	if mode, ok := syntaxModes[tag]; ok {
		return mode
	}
	return tag
}
