package config

import "fmt"

// Selectors are the per-page selector profiles. Each list is an ordered
// set of fallback alternatives tried in preference order, since the host
// sites rename their markup without notice.
type Selectors struct {
	// Source page.
	Board         []string `yaml:"board"`
	ControlRow    []string `yaml:"control_row"`
	ExportControl []string `yaml:"export_control"`

	// Destination page.
	PasteInput    []string `yaml:"paste_input"`
	SubmitControl []string `yaml:"submit_control"`
	Form          []string `yaml:"form"`

	// Fixed identifiers for the elements pgnbridge injects; used to
	// de-duplicate re-injection.
	TriggerID string `yaml:"trigger_id"`
	ToastID   string `yaml:"toast_id"`
}

// DefaultSelectors returns the selector profile for the supported sites.
func DefaultSelectors() Selectors {
	return Selectors{
		Board: []string{
			"wc-chess-board",
			".board-layout-main .board",
			"#board-single",
		},
		ControlRow: []string{
			".game-over-buttons-component",
			".live-game-buttons-component",
			".game-controls",
		},
		ExportControl: []string{
			"button.share",
			"button[aria-label=\"Share\"]",
			".icon-font-chess.share",
		},
		PasteInput: []string{
			"textarea[name=\"pgn\"]",
			"#form3-pgn",
			".paste textarea",
		},
		SubmitControl: []string{
			"button[type=\"submit\"]",
			".submit-button",
		},
		Form: []string{
			"form.paste",
			"main form",
			"form",
		},
		TriggerID: "pgnbridge-trigger",
		ToastID:   "pgnbridge-toast",
	}
}

// Validate checks that every selector list has at least one alternative
// and the injected-element identifiers are set.
func (s Selectors) Validate() error {
	lists := map[string][]string{
		"board":          s.Board,
		"control_row":    s.ControlRow,
		"export_control": s.ExportControl,
		"paste_input":    s.PasteInput,
		"submit_control": s.SubmitControl,
		"form":           s.Form,
	}
	for name, list := range lists {
		if len(list) == 0 {
			return fmt.Errorf("selectors.%s must have at least one alternative", name)
		}
	}
	if s.TriggerID == "" {
		return fmt.Errorf("selectors.trigger_id is required")
	}
	if s.ToastID == "" {
		return fmt.Errorf("selectors.toast_id is required")
	}
	return nil
}
