// Package agent implements the two page-scoped agents of the transfer:
// the source agent that scrapes the finished game off the review page,
// and the destination agent that pastes it into the analysis page. Both
// recover every failure at their own boundary; errors surface as a
// transient visual state plus a toast, never as an uncaught fault in the
// page.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pgnbridge/pgnbridge/pkg/browser"
	"github.com/pgnbridge/pgnbridge/pkg/clipboard"
	"github.com/pgnbridge/pgnbridge/pkg/config"
	"github.com/pgnbridge/pgnbridge/pkg/logging"
	"github.com/pgnbridge/pgnbridge/pkg/record"
)

// activateBinding is the page-global function the injected trigger
// control calls on click.
const activateBinding = "__pgnbridgeActivate"

// triggerLabel is the resting label of the injected trigger control.
const triggerLabel = "Analyze elsewhere"

// capturePollInterval is how often the agent checks for an intercepted
// export artifact while racing the interception timeout.
const capturePollInterval = 100 * time.Millisecond

// errActivationIgnored marks trigger activations dropped by the debounce
// or the in-progress guard.
var errActivationIgnored = errors.New("activation ignored")

// SourceAgent drives the source page: it waits for the game board,
// injects the trigger control, and on activation captures the game
// record, copies it to the clipboard, and opens the destination tab.
//
// One agent instance serves one page for the page's lifetime. All state
// transitions happen under the agent's mutex; the mutation watcher and
// the reset timers are the only concurrent callers.
type SourceAgent struct {
	page   PageDriver
	tabs   TabOpener
	clip   clipboard.Clipboard
	notify *Notifier
	cfg    config.Config
	log    *logging.Logger

	mu             sync.Mutex
	state          State
	inProgress     bool
	lastActivation time.Time
	resetTimer     *time.Timer
	watcher        *browser.Subscription
	dest           *browser.Session

	results chan error

	// OnState, when set, observes every state transition. Called outside
	// the agent's lock.
	OnState func(State)
}

// NewSourceAgent creates an idle source agent for one page.
func NewSourceAgent(page PageDriver, tabs TabOpener, clip clipboard.Clipboard, cfg config.Config, log *logging.Logger) *SourceAgent {
	a := &SourceAgent{
		page:    page,
		tabs:    tabs,
		clip:    clip,
		cfg:     cfg,
		log:     log,
		state:   StateIdle,
		results: make(chan error, 8),
	}
	a.notify = NewNotifier(page, cfg.Selectors.ToastID, log)
	return a
}

// Notifier returns the agent's notifier so callers can attach a terminal
// echo hook.
func (a *SourceAgent) Notifier() *Notifier {
	return a.notify
}

// State returns the current lifecycle state.
func (a *SourceAgent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Results delivers the outcome of every completed transfer started via
// the injected trigger. Ignored activations produce nothing.
func (a *SourceAgent) Results() <-chan error {
	return a.results
}

// DestinationSession returns the tab opened by the last successful
// transfer, if any.
func (a *SourceAgent) DestinationSession() *browser.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dest
}

// Arm waits for the game-board region, injects the trigger control, and
// starts the background watcher that re-injects it when the host page
// rebuilds the control row.
func (a *SourceAgent) Arm(ctx context.Context) error {
	board, err := a.page.WaitForAny(a.cfg.Selectors.Board, browser.WaitOptions{
		Timeout: a.cfg.Timeouts.BoardWait.Std(),
	})
	if err != nil {
		return newError(KindRecordNotFound, err)
	}
	a.log.Debugf("board region detected via %q", board)

	if err := a.page.Expose(activateBinding, a.onTriggerClick); err != nil {
		return fmt.Errorf("binding trigger activation: %w", err)
	}
	if err := a.injectTrigger(); err != nil {
		return fmt.Errorf("injecting trigger control: %w", err)
	}

	watcher, err := a.page.Watch("control-row", a.cfg.Timeouts.ActivationDebounce.Std(), a.handleMutation)
	if err != nil {
		// The agent still works without re-injection; the trigger just
		// will not survive a page rebuild.
		a.log.Warnf("mutation watcher unavailable: %v", err)
	} else {
		a.mu.Lock()
		a.watcher = watcher
		a.mu.Unlock()
	}

	a.transition(StateArmed)
	a.log.Infof("source agent armed on %s", a.page.URL())
	return nil
}

func (a *SourceAgent) injectTrigger() error {
	_, err := a.page.Evaluate(triggerInjectScript(
		a.cfg.Selectors.TriggerID,
		a.cfg.Selectors.ControlRow,
		activateBinding,
		triggerLabel,
	))
	return err
}

// handleMutation runs on every debounced page mutation: it re-injects or
// relocates the trigger (the script de-duplicates by element ID) and
// restores the current visual state on a rebuilt control.
func (a *SourceAgent) handleMutation() {
	if err := a.injectTrigger(); err != nil {
		a.log.Debugf("trigger re-injection failed: %v", err)
		return
	}
	a.applyTriggerState(a.State())
}

// onTriggerClick handles the exposed binding: the actual transfer runs
// off the binding goroutine so the page is never blocked on it.
func (a *SourceAgent) onTriggerClick() {
	go func() {
		err := a.Transfer(context.Background())
		if errors.Is(err, errActivationIgnored) {
			return
		}
		select {
		case a.results <- err:
		default:
			a.log.Warnf("transfer result dropped: %v", err)
		}
	}()
}

// Transfer runs one full transfer: capture, sanitize, validate, copy,
// open destination tab. Activations while a transfer is in progress, or
// within the debounce window of the previous one, are ignored.
func (a *SourceAgent) Transfer(ctx context.Context) error {
	if err := a.begin(); err != nil {
		return err
	}

	a.notify.Show(LevelInfo, "Transferring game...")

	err := a.transfer(ctx)
	if err != nil {
		a.log.Errorf("transfer failed: %v", err)
		a.notify.Show(LevelError, UserMessage(err))
		a.finish(StateError, a.cfg.Timeouts.ErrorReset.Std())
		return err
	}

	a.notify.Show(LevelSuccess, "Game copied and analysis page opened")
	a.finish(StateSuccess, a.cfg.Timeouts.SuccessReset.Std())
	return nil
}

// begin applies the activation guards and moves the agent to processing.
func (a *SourceAgent) begin() error {
	a.mu.Lock()
	now := time.Now()
	if a.inProgress || a.state != StateArmed || now.Sub(a.lastActivation) < a.cfg.Timeouts.ActivationDebounce.Std() {
		a.mu.Unlock()
		return errActivationIgnored
	}
	a.lastActivation = now
	a.inProgress = true
	a.mu.Unlock()

	a.transition(StateProcessing)
	return nil
}

// finish records the terminal state and schedules the auto-reset back to
// armed.
func (a *SourceAgent) finish(state State, resetAfter time.Duration) {
	a.mu.Lock()
	a.inProgress = false
	if a.resetTimer != nil {
		a.resetTimer.Stop()
	}
	a.resetTimer = time.AfterFunc(resetAfter, a.resetToArmed)
	a.mu.Unlock()

	a.transition(state)
}

func (a *SourceAgent) resetToArmed() {
	a.mu.Lock()
	terminal := a.state == StateSuccess || a.state == StateError
	a.mu.Unlock()
	if terminal {
		a.transition(StateArmed)
	}
}

func (a *SourceAgent) transfer(ctx context.Context) error {
	raw, err := a.captureRecord(ctx)
	if err != nil {
		return err
	}

	text := record.Sanitize(raw)
	result := record.ValidateExpecting(text, a.cfg.ExpectedVariant)
	for _, warning := range result.Warnings {
		a.log.Warnf("record warning: %s", warning)
	}
	if !result.IsValid {
		return newError(KindRecordDecode, fmt.Errorf("invalid record: %s", strings.Join(result.Errors, "; ")))
	}

	a.log.Infof("transferring %s", record.ParseHeader(text))

	if err := a.clip.WriteAll(text); err != nil {
		return newError(KindClipboardWrite, err)
	}

	dest, err := a.tabs.OpenTab(a.cfg.DestinationURL, browser.NavigateOptions{
		WaitUntil: "domcontentloaded",
	})
	if err != nil {
		return newError(KindTabOpen, err)
	}

	a.mu.Lock()
	a.dest = dest
	a.mu.Unlock()
	return nil
}

// captureRecord intercepts the host page's export action: it installs a
// single-shot capture-phase click interceptor, programmatically activates
// the native export control, and races the intercepted data reference
// against the interception timeout. The interceptor is removed on both
// paths.
func (a *SourceAgent) captureRecord(ctx context.Context) (string, error) {
	exportSel, err := a.page.WaitForAny(a.cfg.Selectors.ExportControl, browser.WaitOptions{
		Timeout: a.cfg.Timeouts.ExportControlWait.Std(),
	})
	if err != nil {
		return "", newError(KindExportControlMissing, err)
	}

	if _, err := a.page.Evaluate(interceptorInstallScript); err != nil {
		return "", fmt.Errorf("installing export interceptor: %w", err)
	}
	defer func() {
		if _, err := a.page.Evaluate(interceptorCleanupScript); err != nil {
			a.log.Debugf("interceptor cleanup failed: %v", err)
		}
	}()

	if err := a.page.Click(exportSel, browser.ClickOptions{}); err != nil {
		return "", newError(KindExportControlMissing, err)
	}

	deadline := time.NewTimer(a.cfg.Timeouts.ExportIntercept.Std())
	defer deadline.Stop()
	ticker := time.NewTicker(capturePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline.C:
			return "", newError(KindExportTimeout, fmt.Errorf("no export artifact within %s", a.cfg.Timeouts.ExportIntercept.Std()))
		case <-ticker.C:
			result, err := a.page.Evaluate(capturePollScript)
			if err != nil {
				a.log.Debugf("capture poll failed: %v", err)
				continue
			}
			href, ok := result.(string)
			if !ok || href == "" {
				continue
			}
			text, err := record.DecodeDataURI(href)
			if err != nil {
				return "", newError(KindRecordDecode, err)
			}
			return text, nil
		}
	}
}

// transition records the new state, notifies the observer hook, and
// restyles the trigger control.
func (a *SourceAgent) transition(state State) {
	a.mu.Lock()
	a.state = state
	a.mu.Unlock()

	if a.OnState != nil {
		a.OnState(state)
	}
	if state == StateIdle {
		return
	}
	if _, err := a.page.Evaluate(triggerStateScript(a.cfg.Selectors.TriggerID, state)); err != nil {
		a.log.Debugf("trigger restyle failed: %v", err)
	}
}

// applyTriggerState restyles the trigger without changing agent state.
func (a *SourceAgent) applyTriggerState(state State) {
	if state == StateIdle {
		return
	}
	if _, err := a.page.Evaluate(triggerStateScript(a.cfg.Selectors.TriggerID, state)); err != nil {
		a.log.Debugf("trigger restyle failed: %v", err)
	}
}

// Close tears down the mutation watcher and any pending reset timer.
func (a *SourceAgent) Close() error {
	a.mu.Lock()
	watcher := a.watcher
	a.watcher = nil
	if a.resetTimer != nil {
		a.resetTimer.Stop()
		a.resetTimer = nil
	}
	a.mu.Unlock()

	if watcher != nil {
		return watcher.Close()
	}
	return nil
}
