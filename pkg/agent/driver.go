package agent

import (
	"time"

	"github.com/pgnbridge/pgnbridge/pkg/browser"
)

// PageDriver is the slice of the browser session the page agents depend
// on. *browser.Session satisfies it; tests drive the agents with fakes.
type PageDriver interface {
	// WaitForAny waits for the first of the ordered selector
	// alternatives to reach the requested state.
	WaitForAny(selectors []string, opts browser.WaitOptions) (string, error)

	// Click clicks the element matching the selector.
	Click(selector string, opts browser.ClickOptions) error

	// Fill fills an input element with the given value.
	Fill(selector, value string, opts browser.FillOptions) error

	// Evaluate executes JavaScript in the page.
	Evaluate(script string) (interface{}, error)

	// Expose registers a page-global function bound to fn.
	Expose(name string, fn func()) error

	// Watch installs a debounced mutation watcher.
	Watch(name string, debounce time.Duration, fn func()) (*browser.Subscription, error)

	// URL returns the current page URL.
	URL() string
}

// TabOpener opens the destination page in a new tab of the running
// browser context.
type TabOpener interface {
	OpenTab(url string, opts browser.NavigateOptions) (*browser.Session, error)
}
