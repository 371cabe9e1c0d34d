package agent

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"github.com/pgnbridge/pgnbridge/pkg/browser"
	"github.com/pgnbridge/pgnbridge/pkg/clipboard"
	"github.com/pgnbridge/pgnbridge/pkg/config"
	"github.com/pgnbridge/pgnbridge/pkg/logging"
)

// submitClickTimeout bounds the fallback click on a standalone submit
// control when no enclosing form was found.
const submitClickTimeout = 2 * time.Second

// DestinationAgent drives the destination page: it reads the record off
// the clipboard, fills the paste input, and submits the enclosing form.
// It runs only when the page path matches the paste route, and only once
// per page load.
type DestinationAgent struct {
	page   PageDriver
	clip   clipboard.Clipboard
	notify *Notifier
	cfg    config.Config
	log    *logging.Logger
	route  glob.Glob

	mu  sync.Mutex
	ran bool

	// OnState, when set, observes the agent's progress through the four
	// user-visible states.
	OnState func(State)
}

// NewDestinationAgent creates the destination agent for one page.
func NewDestinationAgent(page PageDriver, clip clipboard.Clipboard, cfg config.Config, log *logging.Logger) (*DestinationAgent, error) {
	route, err := glob.Compile(cfg.DestinationPathPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid destination path pattern %q: %w", cfg.DestinationPathPattern, err)
	}

	a := &DestinationAgent{
		page:  page,
		clip:  clip,
		cfg:   cfg,
		log:   log,
		route: route,
	}
	a.notify = NewNotifier(page, cfg.Selectors.ToastID, log)
	return a, nil
}

// Notifier returns the agent's notifier so callers can attach a terminal
// echo hook.
func (a *DestinationAgent) Notifier() *Notifier {
	return a.notify
}

// Run performs the paste-and-submit flow. It is idempotent per page
// load: a second call is a no-op. A page whose path does not match the
// paste route is left untouched.
func (a *DestinationAgent) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.ran {
		a.mu.Unlock()
		return nil
	}
	a.ran = true
	a.mu.Unlock()

	pageURL := a.page.URL()
	parsed, err := url.Parse(pageURL)
	if err != nil || !a.route.Match(parsed.Path) {
		a.log.Debugf("page %q does not match paste route %q, skipping", pageURL, a.cfg.DestinationPathPattern)
		return nil
	}

	a.setState(StateProcessing)

	inputSel, err := a.page.WaitForAny(a.cfg.Selectors.PasteInput, browser.WaitOptions{
		State:   browser.StateVisible,
		Timeout: a.cfg.Timeouts.InputWait.Std(),
	})
	if err != nil {
		return a.fail(newError(KindInputNotFound, err))
	}

	text, err := a.clip.ReadAll()
	if err != nil {
		return a.fail(newError(KindClipboardRead, err))
	}

	if err := a.page.Fill(inputSel, text, browser.FillOptions{}); err != nil {
		return a.fail(newError(KindInputNotFound, err))
	}

	// Fire input/change so the host page's own reactivity sees the value.
	if _, err := a.page.Evaluate(dispatchInputEventsScript(inputSel)); err != nil {
		a.log.Warnf("dispatching input events failed: %v", err)
	}

	select {
	case <-ctx.Done():
		// Canceled after the fill: state observers still need a terminal
		// state, not a run parked at processing.
		a.log.Warnf("destination run canceled before submit: %v", ctx.Err())
		a.setState(StateError)
		return ctx.Err()
	case <-time.After(a.cfg.Timeouts.SubmitDelay.Std()):
	}

	// Auto-submit is a convenience, not a required outcome: failures here
	// are logged and the run still counts as a success.
	a.submit(inputSel)

	a.setState(StateSuccess)
	a.notify.Show(LevelSuccess, "Game pasted for analysis")
	a.log.Infof("destination agent finished on %s", pageURL)
	return nil
}

// submit submits the form enclosing the paste input, falling back to a
// standalone submit control.
func (a *DestinationAgent) submit(inputSel string) {
	result, err := a.page.Evaluate(submitScript(inputSel, a.cfg.Selectors.Form))
	if err == nil {
		if submitted, ok := result.(bool); ok && submitted {
			return
		}
	} else {
		a.log.Warnf("form submit failed: %v", err)
	}

	clickErr := a.page.Click(browser.JoinSelectors(a.cfg.Selectors.SubmitControl), browser.ClickOptions{
		Timeout: submitClickTimeout,
	})
	if clickErr != nil {
		a.log.Warnf("submit control fallback failed: %v", clickErr)
	}
}

func (a *DestinationAgent) fail(err error) error {
	a.log.Errorf("destination agent failed: %v", err)
	a.notify.Show(LevelError, UserMessage(err))
	a.setState(StateError)
	return err
}

func (a *DestinationAgent) setState(state State) {
	if a.OnState != nil {
		a.OnState(state)
	}
}
