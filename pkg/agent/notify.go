package agent

import (
	"fmt"

	"github.com/pgnbridge/pgnbridge/pkg/logging"
)

// Level classifies a toast notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier shows transient toast messages inside the page and echoes
// them to an optional terminal hook. Toasts are cosmetic; every failure
// to show one is logged and swallowed.
type Notifier struct {
	page    PageDriver
	toastID string
	log     *logging.Logger

	// Echo, when set, receives every toast for terminal display.
	Echo func(level Level, message string)
}

// NewNotifier creates a notifier rendering into the container with the
// given fixed element ID.
func NewNotifier(page PageDriver, toastID string, log *logging.Logger) *Notifier {
	return &Notifier{page: page, toastID: toastID, log: log}
}

var toastColors = map[Level]string{
	LevelInfo:    "#3a86ff",
	LevelSuccess: "#2a9d8f",
	LevelError:   "#e76f51",
}

func toastScript(toastID string, level Level, message string) string {
	color, ok := toastColors[level]
	if !ok {
		color = toastColors[LevelInfo]
	}
	return fmt.Sprintf(`(() => {
	let container = document.getElementById(%[1]q);
	if (!container) {
		container = document.createElement("div");
		container.id = %[1]q;
		container.style.cssText = "position:fixed;top:16px;right:16px;z-index:99999;" +
			"display:flex;flex-direction:column;gap:8px;";
		document.body.appendChild(container);
	}
	const toast = document.createElement("div");
	toast.textContent = %[2]q;
	toast.style.cssText = "padding:10px 16px;border-radius:4px;color:#fff;" +
		"font:14px sans-serif;box-shadow:0 2px 8px rgba(0,0,0,.25);background:" + %[3]q + ";";
	container.appendChild(toast);
	setTimeout(() => toast.remove(), 4000);
	return true;
})();`, toastID, message, color)
}

// Show displays a toast in the page and echoes it to the terminal hook.
func (n *Notifier) Show(level Level, message string) {
	if n.Echo != nil {
		n.Echo(level, message)
	}
	if n.page == nil {
		return
	}
	if _, err := n.page.Evaluate(toastScript(n.toastID, level, message)); err != nil {
		n.log.Warnf("toast failed: %v", err)
	}
}
