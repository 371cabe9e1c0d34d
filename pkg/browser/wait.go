package browser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ErrWaitTimeout is returned when no selector alternative reaches the
// requested state within the wait window.
var ErrWaitTimeout = errors.New("element wait timed out")

// validWaitStates are the element conditions a wait can resolve on.
var validWaitStates = map[WaitState]bool{
	StateAttached: true,
	StateDetached: true,
	StateVisible:  true,
	StateHidden:   true,
}

// JoinSelectors combines ordered fallback alternatives into a single
// selector group so one wait covers all of them.
func JoinSelectors(selectors []string) string {
	trimmed := make([]string, 0, len(selectors))
	for _, sel := range selectors {
		if s := strings.TrimSpace(sel); s != "" {
			trimmed = append(trimmed, s)
		}
	}
	return strings.Join(trimmed, ", ")
}

// WaitForAny waits until any of the ordered selector alternatives reaches
// the requested state, returning the first alternative (in preference
// order) that matches. If the target is already in the requested state the
// wait resolves immediately. A single underlying waiter is registered per
// call and is torn down on both the success and the timeout path.
//
// For StateDetached and StateHidden the wait resolves when no alternative
// matches anymore; the returned selector is empty in that case.
func (s *Session) WaitForAny(selectors []string, opts WaitOptions) (string, error) {
	s.UpdateLastUsed()

	group := JoinSelectors(selectors)
	if group == "" {
		return "", fmt.Errorf("at least one selector is required")
	}

	state := opts.State
	if state == "" {
		state = StateAttached
	}
	if !validWaitStates[state] {
		return "", fmt.Errorf("invalid wait state %q", state)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultWaitTimeout
	}

	pwState := playwright.WaitForSelectorState(state)
	_, err := s.Page.WaitForSelector(group, playwright.PageWaitForSelectorOptions{
		State:   &pwState,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return "", fmt.Errorf("%w: no match for %q (state %s) within %s", ErrWaitTimeout, group, state, timeout)
		}
		// Not a timeout: a malformed selector or a closed page fails as
		// itself, not as an expired wait.
		return "", fmt.Errorf("waiting for %q: %w", group, err)
	}

	if state == StateDetached || state == StateHidden {
		return "", nil
	}
	return s.matchedAlternative(selectors, state == StateVisible), nil
}

// matchedAlternative probes the alternatives in preference order to
// report which one satisfied the wait. If the page mutated between the
// wait resolving and the probe, the preferred alternative is reported.
func (s *Session) matchedAlternative(selectors []string, needVisible bool) string {
	fallback := ""
	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		if fallback == "" {
			fallback = sel
		}
		element, err := s.Page.QuerySelector(sel)
		if err != nil || element == nil {
			continue
		}
		if needVisible {
			visible, err := element.IsVisible()
			if err != nil || !visible {
				continue
			}
		}
		return sel
	}
	return fallback
}

// WaitForVisible waits until one of the alternatives is present and
// visible, not merely attached.
func (s *Session) WaitForVisible(selectors []string, timeout time.Duration) (string, error) {
	return s.WaitForAny(selectors, WaitOptions{State: StateVisible, Timeout: timeout})
}

// WaitForRemoval waits until none of the alternatives remains in the DOM.
func (s *Session) WaitForRemoval(selectors []string, timeout time.Duration) error {
	_, err := s.WaitForAny(selectors, WaitOptions{State: StateDetached, Timeout: timeout})
	return err
}
