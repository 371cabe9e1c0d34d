package browser

import (
	"fmt"
	"sync"
	"time"
)

// Subscription is a handle to an active mutation watcher. Close
// disconnects the in-page observer and stops the debouncer; it is safe to
// call more than once. Cleanup is paired with registration: Watch never
// returns a Subscription without a working Close.
type Subscription struct {
	closeFn   func() error
	debouncer *Debouncer
	once      sync.Once
}

// NewSubscription wraps a cleanup function. Exposed so agent tests can
// hand out stub subscriptions.
func NewSubscription(closeFn func() error) *Subscription {
	return &Subscription{closeFn: closeFn}
}

// Close tears the watcher down.
func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		if s.debouncer != nil {
			s.debouncer.Stop()
		}
		if s.closeFn != nil {
			err = s.closeFn()
		}
	})
	return err
}

const observerInstallScript = `(() => {
	const watchers = (window.__pgnbridgeWatchers = window.__pgnbridgeWatchers || {});
	if (watchers[%[1]q]) {
		return false;
	}
	const observer = new MutationObserver(() => {
		if (typeof window[%[2]q] === "function") {
			window[%[2]q]();
		}
	});
	observer.observe(document.body || document.documentElement, {
		childList: true,
		subtree: true,
		attributes: true,
	});
	watchers[%[1]q] = observer;
	window.addEventListener("unload", () => {
		observer.disconnect();
		delete watchers[%[1]q];
	}, { once: true });
	return true;
})();`

const observerTeardownScript = `(() => {
	const watchers = window.__pgnbridgeWatchers || {};
	const observer = watchers[%[1]q];
	if (observer) {
		observer.disconnect();
		delete watchers[%[1]q];
		return true;
	}
	return false;
})();`

// Watch installs a page-wide mutation watcher that invokes fn after the
// page has been quiet for the debounce interval. The name keys the
// watcher inside the page so a second Watch with the same name is a
// no-op there. The watcher disconnects itself on page unload.
func (s *Session) Watch(name string, debounce time.Duration, fn func()) (*Subscription, error) {
	s.watchSeq++
	binding := fmt.Sprintf("__pgnbridgeNotify%d", s.watchSeq)

	debouncer := NewDebouncer(debounce, fn)
	if err := s.Expose(binding, debouncer.Trigger); err != nil {
		return nil, fmt.Errorf("installing mutation watcher %s: %w", name, err)
	}

	if _, err := s.Evaluate(fmt.Sprintf(observerInstallScript, name, binding)); err != nil {
		debouncer.Stop()
		return nil, fmt.Errorf("installing mutation watcher %s: %w", name, err)
	}

	sub := NewSubscription(func() error {
		_, err := s.Evaluate(fmt.Sprintf(observerTeardownScript, name))
		return err
	})
	sub.debouncer = debouncer
	return sub, nil
}

// Debouncer coalesces bursts of notifications into a single callback
// fired after the burst has been quiet for the configured interval.
type Debouncer struct {
	mu      sync.Mutex
	d       time.Duration
	fn      func()
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer around fn.
func NewDebouncer(d time.Duration, fn func()) *Debouncer {
	return &Debouncer{d: d, fn: fn}
}

// Trigger (re)arms the debounce window.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.d, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	stopped := d.stopped
	d.mu.Unlock()

	if !stopped {
		d.fn()
	}
}

// Stop cancels any pending callback and ignores further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
