package agent

import (
	"fmt"

	"github.com/pgnbridge/pgnbridge/pkg/browser"
)

// The scripts below are the only code pgnbridge runs inside the host
// pages. Each one is defensive about page structure and cleans up after
// itself; none throws into the host page's console.

// triggerInjectScript injects the trigger control into the first matching
// control row, or as a fixed-position element when no row exists. It is
// idempotent: an existing trigger is relocated into the row rather than
// duplicated, keyed by its fixed element ID.
func triggerInjectScript(triggerID string, controlRow []string, binding, label string) string {
	return fmt.Sprintf(`(() => {
	const row = document.querySelector(%[2]q);
	let trigger = document.getElementById(%[1]q);
	if (!trigger) {
		trigger = document.createElement("button");
		trigger.id = %[1]q;
		trigger.type = "button";
		trigger.textContent = %[4]q;
		trigger.style.cssText = "margin:4px;padding:6px 12px;border-radius:4px;border:none;" +
			"background:#3a86ff;color:#fff;cursor:pointer;font-weight:600;";
		trigger.addEventListener("click", () => {
			if (typeof window[%[3]q] === "function") {
				window[%[3]q]();
			}
		});
	}
	if (row) {
		if (trigger.parentElement !== row) {
			row.appendChild(trigger);
		}
	} else if (!trigger.parentElement) {
		trigger.style.position = "fixed";
		trigger.style.bottom = "16px";
		trigger.style.right = "16px";
		trigger.style.zIndex = "99999";
		document.body.appendChild(trigger);
	}
	return trigger.parentElement === row;
})();`, triggerID, browser.JoinSelectors(controlRow), binding, label)
}

// triggerStateScript restyles the trigger control for the given state.
func triggerStateScript(triggerID string, state State) string {
	var label, color string
	switch state {
	case StateProcessing:
		label, color = "Transferring...", "#f4a261"
	case StateSuccess:
		label, color = "Transferred!", "#2a9d8f"
	case StateError:
		label, color = "Transfer failed", "#e76f51"
	default:
		label, color = "Analyze elsewhere", "#3a86ff"
	}
	return fmt.Sprintf(`(() => {
	const trigger = document.getElementById(%q);
	if (!trigger) {
		return false;
	}
	trigger.textContent = %q;
	trigger.style.background = %q;
	return true;
})();`, triggerID, label, color)
}

// interceptorInstallScript installs a single-shot capture-phase click
// listener that grabs the export anchor's data reference before the host
// page acts on it. The listener removes itself on first match; a cancel
// hook is left behind for the timeout path.
const interceptorInstallScript = `(() => {
	if (window.__pgnbridgeCancelCapture) {
		window.__pgnbridgeCancelCapture();
	}
	window.__pgnbridgeCapture = null;
	const handler = (event) => {
		const anchor = event.target && event.target.closest
			? event.target.closest('a[href^="data:"]')
			: null;
		if (!anchor) {
			return;
		}
		event.preventDefault();
		event.stopPropagation();
		window.__pgnbridgeCapture = anchor.getAttribute("href");
		remove();
	};
	const remove = () => {
		document.removeEventListener("click", handler, true);
		delete window.__pgnbridgeCancelCapture;
	};
	document.addEventListener("click", handler, true);
	window.__pgnbridgeCancelCapture = remove;
	return true;
})();`

// capturePollScript reads the intercepted data reference, if any.
const capturePollScript = `window.__pgnbridgeCapture || null;`

// interceptorCleanupScript removes the interceptor and the captured
// reference regardless of which path ended the interception.
const interceptorCleanupScript = `(() => {
	if (window.__pgnbridgeCancelCapture) {
		window.__pgnbridgeCancelCapture();
	}
	window.__pgnbridgeCapture = null;
	return true;
})();`

// dispatchInputEventsScript fires input and change events on the filled
// field so the host page's own reactivity notices the new value.
func dispatchInputEventsScript(selector string) string {
	return fmt.Sprintf(`(() => {
	const field = document.querySelector(%q);
	if (!field) {
		return false;
	}
	field.dispatchEvent(new Event("input", { bubbles: true }));
	field.dispatchEvent(new Event("change", { bubbles: true }));
	return true;
})();`, selector)
}

// submitScript submits the form enclosing the paste input, falling back
// to the first matching standalone form. Returns false when no form was
// found so the caller can try the submit-control fallback.
func submitScript(inputSelector string, forms []string) string {
	return fmt.Sprintf(`(() => {
	const field = document.querySelector(%q);
	let form = field ? field.closest("form") : null;
	if (!form) {
		form = document.querySelector(%q);
	}
	if (!form) {
		return false;
	}
	if (typeof form.requestSubmit === "function") {
		form.requestSubmit();
	} else {
		form.submit();
	}
	return true;
})();`, inputSelector, browser.JoinSelectors(forms))
}
