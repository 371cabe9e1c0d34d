// Package clipboard wraps the operating-system clipboard behind a small
// interface so the page agents can be exercised with stubs in tests.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrEmpty is returned by ReadAll when the clipboard holds no text.
var ErrEmpty = errors.New("clipboard is empty")

// Clipboard is the plain-text clipboard surface the agents depend on.
type Clipboard interface {
	// ReadAll returns the clipboard text, or ErrEmpty if there is none.
	ReadAll() (string, error)

	// WriteAll replaces the clipboard text.
	WriteAll(text string) error
}

// System is the real OS clipboard.
type System struct{}

// NewSystem returns the OS-backed clipboard.
func NewSystem() *System {
	return &System{}
}

// ReadAll reads the OS clipboard.
func (s *System) ReadAll() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("reading clipboard: %w", err)
	}
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

// WriteAll writes the OS clipboard.
func (s *System) WriteAll(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}
