package record

import (
	"fmt"
	"regexp"
)

// DefaultVariant is the variant tag value the source site exports for
// ordinary games.
const DefaultVariant = "Standard"

// requiredTags is the fixed set of header fields a transferable record
// must carry. A record missing any of these is rejected.
var requiredTags = []string{"Event", "Site", "Date", "White", "Black", "Result"}

// canonicalResults are the four outcome tokens the destination site
// understands.
var canonicalResults = map[string]bool{
	"1-0":     true,
	"0-1":     true,
	"1/2-1/2": true,
	"*":       true,
}

// moveTokenRe detects at least one numbered move in the movetext section.
var moveTokenRe = regexp.MustCompile(`\b\d+\.(\.\.)?\s*\S`)

// Result reports the outcome of validating a record. Errors make the
// record untransferable; warnings are surfaced to the user but do not
// block the transfer.
type Result struct {
	IsValid  bool
	Errors   []string
	Warnings []string
}

// Validate checks a record for the required header fields and the
// structural hints the destination site relies on, expecting the default
// variant.
func Validate(text string) Result {
	return ValidateExpecting(text, DefaultVariant)
}

// ValidateExpecting is Validate with an explicit expected variant value.
func ValidateExpecting(text, expectedVariant string) Result {
	res := Result{IsValid: true}
	tags := ParseTags(text)

	for _, tag := range requiredTags {
		if _, ok := tags[tag]; !ok {
			res.IsValid = false
			res.Errors = append(res.Errors, fmt.Sprintf("missing required tag %q", tag))
		}
	}

	if !moveTokenRe.MatchString(Movetext(text)) {
		res.Warnings = append(res.Warnings, "no move tokens detected in record")
	}

	if result, ok := tags["Result"]; ok && !canonicalResults[result] {
		res.Warnings = append(res.Warnings, fmt.Sprintf("non-canonical result value %q", result))
	}

	if variant, ok := tags["Variant"]; !ok {
		res.Warnings = append(res.Warnings, fmt.Sprintf("variant tag absent, expected %q", expectedVariant))
	} else if variant != expectedVariant {
		res.Warnings = append(res.Warnings, fmt.Sprintf("variant %q does not match expected %q", variant, expectedVariant))
	}

	return res
}
