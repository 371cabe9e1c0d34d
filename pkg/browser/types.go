package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session wraps one browser page and the operations the page agents
// perform on it.
type Session struct {
	// Page is the Playwright page driven by this session.
	Page playwright.Page

	// Headless indicates whether the browser runs without a window.
	Headless bool

	// CreatedAt is when the session was opened.
	CreatedAt time.Time

	// LastUsedAt is the timestamp of the last operation on this session.
	LastUsedAt time.Time

	// CurrentURL is the URL of the current page.
	CurrentURL string

	watchSeq int
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window.
	Headless bool

	// Viewport sets the initial viewport size.
	Viewport *Viewport

	// Timeout sets the default timeout for page operations.
	Timeout time.Duration
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful.
	// Valid values: "load", "domcontentloaded", "networkidle".
	WaitUntil string

	// Timeout bounds the navigation (0 means the session default).
	Timeout time.Duration
}

// WaitState is the element condition a wait resolves on.
type WaitState string

const (
	// StateAttached waits for presence in the DOM (the default).
	StateAttached WaitState = "attached"

	// StateDetached waits for removal from the DOM.
	StateDetached WaitState = "detached"

	// StateVisible waits for presence and visibility.
	StateVisible WaitState = "visible"

	// StateHidden waits for absence or invisibility.
	StateHidden WaitState = "hidden"
)

// WaitOptions configures an element wait.
type WaitOptions struct {
	// State is the condition to wait for; StateAttached when empty.
	State WaitState

	// Timeout bounds the wait (0 means DefaultWaitTimeout).
	Timeout time.Duration
}

// ClickOptions configures element clicking behavior.
type ClickOptions struct {
	// Timeout bounds the click (0 means the session default).
	Timeout time.Duration
}

// FillOptions configures form input filling.
type FillOptions struct {
	// Timeout bounds the fill (0 means the session default).
	Timeout time.Duration
}

// Default values for session and wait operations.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultWaitTimeout    = 20 * time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)
