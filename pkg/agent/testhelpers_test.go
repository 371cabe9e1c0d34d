package agent

import (
	"strings"
	"sync"
	"time"

	"github.com/pgnbridge/pgnbridge/pkg/browser"
	"github.com/pgnbridge/pgnbridge/pkg/config"
	"github.com/pgnbridge/pgnbridge/pkg/logging"
)

const testGame = `[Event "Live Chess"]
[Site "Chess.com"]
[Date "2024.03.09"]
[White "alice"]
[Black "bob"]
[Result "1-0"]
[Variant "Standard"]

1. e4 e5 2. Nf3 Nc6 3. Bb5 1-0`

// fakePage simulates the page the agents drive. The default behavior is
// a cooperative page: waits resolve on the preferred selector and every
// script evaluates to true.
type fakePage struct {
	mu      sync.Mutex
	url     string
	clicks  []string
	fills   map[string]string
	evals   []string
	exposed map[string]func()
	watches map[string]func()

	// captured is what the capture poll script reports; clickCapture is
	// copied into captured when any element is clicked, simulating the
	// export interception.
	captured     string
	clickCapture string

	waitFn  func(selectors []string, opts browser.WaitOptions) (string, error)
	evalFn  func(script string) (interface{}, error, bool)
	clickFn func(selector string) error
}

func newFakePage(url string) *fakePage {
	return &fakePage{
		url:     url,
		fills:   make(map[string]string),
		exposed: make(map[string]func()),
		watches: make(map[string]func()),
	}
}

func (p *fakePage) WaitForAny(selectors []string, opts browser.WaitOptions) (string, error) {
	if p.waitFn != nil {
		return p.waitFn(selectors, opts)
	}
	if len(selectors) == 0 {
		return "", browser.ErrWaitTimeout
	}
	return selectors[0], nil
}

func (p *fakePage) Click(selector string, opts browser.ClickOptions) error {
	p.mu.Lock()
	p.clicks = append(p.clicks, selector)
	if p.clickCapture != "" {
		p.captured = p.clickCapture
	}
	p.mu.Unlock()

	if p.clickFn != nil {
		return p.clickFn(selector)
	}
	return nil
}

func (p *fakePage) Fill(selector, value string, opts browser.FillOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fills[selector] = value
	return nil
}

func (p *fakePage) Evaluate(script string) (interface{}, error) {
	p.mu.Lock()
	p.evals = append(p.evals, script)
	captured := p.captured
	p.mu.Unlock()

	if p.evalFn != nil {
		if result, err, handled := p.evalFn(script); handled {
			return result, err
		}
	}
	if script == capturePollScript {
		if captured == "" {
			return nil, nil
		}
		return captured, nil
	}
	return true, nil
}

func (p *fakePage) Expose(name string, fn func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exposed[name] = fn
	return nil
}

func (p *fakePage) Watch(name string, debounce time.Duration, fn func()) (*browser.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.watches[name] = fn
	return browser.NewSubscription(func() error { return nil }), nil
}

func (p *fakePage) URL() string {
	return p.url
}

func (p *fakePage) evalsContaining(substr string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	count := 0
	for _, script := range p.evals {
		if strings.Contains(script, substr) {
			count++
		}
	}
	return count
}

func (p *fakePage) clickCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clicks)
}

func (p *fakePage) filledValue(selector string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fills[selector]
}

// fakeTabs records destination tab opens.
type fakeTabs struct {
	mu     sync.Mutex
	opened []string
	err    error
}

func (t *fakeTabs) OpenTab(url string, opts browser.NavigateOptions) (*browser.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return nil, t.err
	}
	t.opened = append(t.opened, url)
	return &browser.Session{CurrentURL: url}, nil
}

func (t *fakeTabs) openedURLs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.opened...)
}

// fakeClipboard is an in-memory clipboard.
type fakeClipboard struct {
	mu       sync.Mutex
	text     string
	written  []string
	readErr  error
	writeErr error
}

func (c *fakeClipboard) ReadAll() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return "", c.readErr
	}
	return c.text, nil
}

func (c *fakeClipboard) WriteAll(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.text = text
	c.written = append(c.written, text)
	return nil
}

func (c *fakeClipboard) writes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.written...)
}

// testConfig shrinks the protocol timing so tests run fast.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.SourceURL = "https://www.chess.com/game/live/123456789"
	cfg.Timeouts.BoardWait = config.Duration(100 * time.Millisecond)
	cfg.Timeouts.ExportControlWait = config.Duration(100 * time.Millisecond)
	cfg.Timeouts.ExportIntercept = config.Duration(2 * time.Second)
	cfg.Timeouts.InputWait = config.Duration(100 * time.Millisecond)
	cfg.Timeouts.SubmitDelay = config.Duration(time.Millisecond)
	cfg.Timeouts.SuccessReset = config.Duration(30 * time.Millisecond)
	cfg.Timeouts.ErrorReset = config.Duration(30 * time.Millisecond)
	cfg.Timeouts.ActivationDebounce = config.Duration(10 * time.Millisecond)
	return cfg
}

func testLogger() *logging.Logger {
	log, _ := logging.NewLogger("test")
	return log
}
