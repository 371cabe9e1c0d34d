package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// UpdateLastUsed updates the LastUsedAt timestamp to the current time.
func (s *Session) UpdateLastUsed() {
	s.LastUsedAt = time.Now()
}

// Navigate navigates the session's page to the specified URL.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	s.UpdateLastUsed()

	playwrightOpts := playwright.PageGotoOptions{}

	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		playwrightOpts.WaitUntil = &waitUntil
	}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = playwright.Float(float64(opts.Timeout.Milliseconds()))
	}

	if _, err := s.Page.Goto(url, playwrightOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	s.CurrentURL = s.Page.URL()
	return nil
}

// URL returns the current page URL.
func (s *Session) URL() string {
	return s.Page.URL()
}

// Click clicks the element matching the selector.
func (s *Session) Click(selector string, opts ClickOptions) error {
	s.UpdateLastUsed()

	playwrightOpts := playwright.PageClickOptions{}
	if opts.Timeout > 0 {
		playwrightOpts.Timeout = playwright.Float(float64(opts.Timeout.Milliseconds()))
	}

	if err := s.Page.Click(selector, playwrightOpts); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}

	// The click may have caused a navigation.
	s.CurrentURL = s.Page.URL()
	return nil
}

// Fill fills an input element with the specified value.
func (s *Session) Fill(selector, value string, opts FillOptions) error {
	s.UpdateLastUsed()

	playwrightOpts := playwright.PageFillOptions{}
	if opts.Timeout > 0 {
		playwrightOpts.Timeout = playwright.Float(float64(opts.Timeout.Milliseconds()))
	}

	if err := s.Page.Fill(selector, value, playwrightOpts); err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}

// Evaluate executes JavaScript in the page and returns its result.
func (s *Session) Evaluate(script string) (interface{}, error) {
	s.UpdateLastUsed()

	result, err := s.Page.Evaluate(script)
	if err != nil {
		return nil, fmt.Errorf("script evaluation failed: %w", err)
	}
	return result, nil
}

// Expose registers a page-global function that invokes fn when called
// from page scripts. Used to route clicks on injected controls back into
// the agent.
func (s *Session) Expose(name string, fn func()) error {
	err := s.Page.ExposeFunction(name, func(args ...interface{}) interface{} {
		fn()
		return nil
	})
	if err != nil {
		return fmt.Errorf("exposing %s failed: %w", name, err)
	}
	return nil
}

// Close closes the underlying page.
func (s *Session) Close() error {
	return s.Page.Close()
}
