package agent

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgnbridge/pgnbridge/pkg/browser"
	"github.com/pgnbridge/pgnbridge/pkg/config"
	"github.com/pgnbridge/pgnbridge/pkg/record"
)

func dataRef(text string) string {
	return "data:application/x-chess-pgn;base64," + base64.StdEncoding.EncodeToString([]byte(text))
}

func armedSourceAgent(t *testing.T, page *fakePage, tabs *fakeTabs, clip *fakeClipboard) *SourceAgent {
	t.Helper()

	a := NewSourceAgent(page, tabs, clip, testConfig(), testLogger())
	t.Cleanup(func() { a.Close() })

	require.NoError(t, a.Arm(context.Background()))
	require.Equal(t, StateArmed, a.State())
	return a
}

func TestSourceTransferEndToEnd(t *testing.T) {
	// The raw artifact carries markup and sloppy whitespace; the
	// clipboard must receive the sanitized record.
	raw := "<div>" + testGame + "</div>\r\n\r\n\r\n\r\n"
	page := newFakePage("https://www.chess.com/game/live/123456789")
	page.clickCapture = dataRef(raw)
	tabs := &fakeTabs{}
	clip := &fakeClipboard{}

	a := armedSourceAgent(t, page, tabs, clip)

	require.NoError(t, a.Transfer(context.Background()))

	require.Len(t, clip.writes(), 1)
	assert.Equal(t, record.Sanitize(raw), clip.writes()[0])
	assert.Equal(t, []string{a.cfg.DestinationURL}, tabs.openedURLs())
	assert.Equal(t, StateSuccess, a.State())
	assert.NotNil(t, a.DestinationSession())

	// The interceptor is single-shot: install once, clean up once.
	assert.Equal(t, 1, page.evalsContaining("addEventListener(\"click\", handler, true)"))
	assert.GreaterOrEqual(t, page.evalsContaining("__pgnbridgeCancelCapture"), 2)

	// Terminal state auto-resets to ready.
	assert.Eventually(t, func() bool {
		return a.State() == StateArmed
	}, time.Second, 5*time.Millisecond)
}

func TestSourceArmInjectsTrigger(t *testing.T) {
	page := newFakePage("https://www.chess.com/game/live/123456789")
	a := armedSourceAgent(t, page, &fakeTabs{}, &fakeClipboard{})

	// Trigger injected with its fixed ID, activation binding exposed,
	// re-injection watcher registered.
	assert.Equal(t, 1, page.evalsContaining("createElement(\"button\")"))
	assert.GreaterOrEqual(t, page.evalsContaining(a.cfg.Selectors.TriggerID), 1)
	assert.Contains(t, page.exposed, activateBinding)
	assert.Contains(t, page.watches, "control-row")
}

func TestSourceArmFailsWithoutBoard(t *testing.T) {
	page := newFakePage("https://www.chess.com/home")
	page.waitFn = func(selectors []string, opts browser.WaitOptions) (string, error) {
		return "", browser.ErrWaitTimeout
	}

	a := NewSourceAgent(page, &fakeTabs{}, &fakeClipboard{}, testConfig(), testLogger())
	defer a.Close()

	err := a.Arm(context.Background())
	assert.Equal(t, KindRecordNotFound, KindOf(err))
	assert.Equal(t, StateIdle, a.State())
}

func TestSourceExportControlMissing(t *testing.T) {
	cfg := testConfig()
	page := newFakePage(cfg.SourceURL)
	exportGroup := browser.JoinSelectors(cfg.Selectors.ExportControl)
	page.waitFn = func(selectors []string, opts browser.WaitOptions) (string, error) {
		if browser.JoinSelectors(selectors) == exportGroup {
			return "", browser.ErrWaitTimeout
		}
		return selectors[0], nil
	}
	clip := &fakeClipboard{}

	a := armedSourceAgent(t, page, &fakeTabs{}, clip)

	err := a.Transfer(context.Background())
	assert.Equal(t, KindExportControlMissing, KindOf(err))
	assert.Empty(t, clip.writes())
	assert.Equal(t, StateError, a.State())

	assert.Eventually(t, func() bool {
		return a.State() == StateArmed
	}, time.Second, 5*time.Millisecond)
}

func TestSourceInterceptionTimeout(t *testing.T) {
	page := newFakePage("https://www.chess.com/game/live/123456789")
	// clickCapture unset: the export action never yields an artifact.
	tabs := &fakeTabs{}
	clip := &fakeClipboard{}

	a := armedSourceAgent(t, page, tabs, clip)
	a.cfg.Timeouts.ExportIntercept = config.Duration(250 * time.Millisecond)

	err := a.Transfer(context.Background())
	assert.Equal(t, KindExportTimeout, KindOf(err))
	assert.Empty(t, clip.writes())
	assert.Empty(t, tabs.openedURLs())

	// The interceptor must be removed on the timeout path too.
	assert.GreaterOrEqual(t, page.evalsContaining("__pgnbridgeCancelCapture"), 2)
}

func TestSourceDecodeFailure(t *testing.T) {
	page := newFakePage("https://www.chess.com/game/live/123456789")
	page.clickCapture = "data:text/plain;base64,!!!not-base64!!!"
	clip := &fakeClipboard{}

	a := armedSourceAgent(t, page, &fakeTabs{}, clip)

	err := a.Transfer(context.Background())
	assert.Equal(t, KindRecordDecode, KindOf(err))
	assert.Empty(t, clip.writes())
}

func TestSourceInvalidRecordRejected(t *testing.T) {
	// Artifact decodes fine but is missing required header fields.
	page := newFakePage("https://www.chess.com/game/live/123456789")
	page.clickCapture = dataRef("1. e4 e5 2. Nf3")
	clip := &fakeClipboard{}

	a := armedSourceAgent(t, page, &fakeTabs{}, clip)

	err := a.Transfer(context.Background())
	assert.Equal(t, KindRecordDecode, KindOf(err))
	assert.Empty(t, clip.writes())
}

func TestSourceClipboardWriteDenied(t *testing.T) {
	page := newFakePage("https://www.chess.com/game/live/123456789")
	page.clickCapture = dataRef(testGame)
	tabs := &fakeTabs{}
	clip := &fakeClipboard{writeErr: errors.New("permission denied")}

	a := armedSourceAgent(t, page, tabs, clip)

	err := a.Transfer(context.Background())
	assert.Equal(t, KindClipboardWrite, KindOf(err))
	assert.Empty(t, tabs.openedURLs())
}

func TestSourceTabOpenFailure(t *testing.T) {
	page := newFakePage("https://www.chess.com/game/live/123456789")
	page.clickCapture = dataRef(testGame)
	tabs := &fakeTabs{err: errors.New("popup blocked")}

	a := armedSourceAgent(t, page, tabs, &fakeClipboard{})

	err := a.Transfer(context.Background())
	assert.Equal(t, KindTabOpen, KindOf(err))
	assert.Equal(t, StateError, a.State())
}

func TestSourceActivationGuards(t *testing.T) {
	page := newFakePage("https://www.chess.com/game/live/123456789")
	page.clickCapture = dataRef(testGame)
	a := armedSourceAgent(t, page, &fakeTabs{}, &fakeClipboard{})

	t.Run("in-progress flag blocks reentry", func(t *testing.T) {
		a.mu.Lock()
		a.inProgress = true
		a.mu.Unlock()

		err := a.Transfer(context.Background())
		assert.ErrorIs(t, err, errActivationIgnored)

		a.mu.Lock()
		a.inProgress = false
		a.mu.Unlock()
	})

	t.Run("debounce window blocks rapid reactivation", func(t *testing.T) {
		a.mu.Lock()
		a.lastActivation = time.Now()
		a.mu.Unlock()

		err := a.Transfer(context.Background())
		assert.ErrorIs(t, err, errActivationIgnored)
	})

	t.Run("not armed blocks activation", func(t *testing.T) {
		b := NewSourceAgent(page, &fakeTabs{}, &fakeClipboard{}, testConfig(), testLogger())
		defer b.Close()

		err := b.Transfer(context.Background())
		assert.ErrorIs(t, err, errActivationIgnored)
	})
}

func TestSourceReinjectionOnMutation(t *testing.T) {
	page := newFakePage("https://www.chess.com/game/live/123456789")
	a := armedSourceAgent(t, page, &fakeTabs{}, &fakeClipboard{})

	before := page.evalsContaining(a.cfg.Selectors.TriggerID)

	// Simulate the host page rebuilding its control row: the watcher
	// callback re-injects the trigger, de-duplicated by its fixed ID.
	page.watches["control-row"]()

	assert.Greater(t, page.evalsContaining(a.cfg.Selectors.TriggerID), before)
}

func TestSourceTriggerClickDeliversResult(t *testing.T) {
	page := newFakePage("https://www.chess.com/game/live/123456789")
	page.clickCapture = dataRef(testGame)
	a := armedSourceAgent(t, page, &fakeTabs{}, &fakeClipboard{})

	// A click on the injected control comes back through the exposed
	// binding.
	page.exposed[activateBinding]()

	select {
	case err := <-a.Results():
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("no transfer result delivered")
	}
}
