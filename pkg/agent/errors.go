package agent

import (
	"errors"
	"fmt"
)

// Kind classifies a transfer failure. Every kind is recovered at the
// agent boundary and surfaced as a transient visual state plus a toast;
// none is fatal to the page or the process.
type Kind string

const (
	// KindRecordNotFound means the source page structure was unexpected
	// or not yet loaded.
	KindRecordNotFound Kind = "record-not-found"

	// KindExportControlMissing means the host site's native export
	// control could not be located.
	KindExportControlMissing Kind = "export-control-missing"

	// KindExportTimeout means the native export action did not produce
	// the expected artifact in time.
	KindExportTimeout Kind = "export-interception-timeout"

	// KindRecordDecode means the intercepted artifact was malformed.
	KindRecordDecode Kind = "record-decode-failure"

	// KindClipboardWrite means the clipboard write was refused.
	KindClipboardWrite Kind = "clipboard-write-denied"

	// KindClipboardRead means the clipboard read was refused or empty.
	KindClipboardRead Kind = "clipboard-read-denied"

	// KindTabOpen means the destination tab could not be opened.
	KindTabOpen Kind = "destination-tab-open-failure"

	// KindInputNotFound means the destination page structure was
	// unexpected.
	KindInputNotFound Kind = "destination-input-not-found"
)

// Error is a classified transfer failure.
type Error struct {
	Kind Kind
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the failure kind from an error chain; empty if the
// error is not a classified transfer failure.
func KindOf(err error) Kind {
	var agentErr *Error
	if errors.As(err, &agentErr) {
		return agentErr.Kind
	}
	return ""
}

// userMessages are the toast texts shown for each failure kind.
var userMessages = map[Kind]string{
	KindRecordNotFound:       "Game not found on this page",
	KindExportControlMissing: "Could not find the export button",
	KindExportTimeout:        "Export did not respond in time",
	KindRecordDecode:         "Exported game could not be read",
	KindClipboardWrite:       "Clipboard access denied",
	KindClipboardRead:        "Clipboard is empty or access denied",
	KindTabOpen:              "Could not open the analysis page",
	KindInputNotFound:        "Paste field not found on the analysis page",
}

// UserMessage returns the toast text for an error.
func UserMessage(err error) string {
	if msg, ok := userMessages[KindOf(err)]; ok {
		return msg
	}
	return "Transfer failed"
}
