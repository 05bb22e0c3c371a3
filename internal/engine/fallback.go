package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// amountPattern matches the first dollar figure in free text, with or
// without a $ sign and thousands separators.
var amountPattern = regexp.MustCompile(`\$?(\d{1,3}(?:,\d{3})+|\d+)`)

// ExtractAmount returns the first dollar amount mentioned in the message,
// or false if none is present.
func ExtractAmount(message string) (int, bool) {
	m := amountPattern.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Fallback is the deterministic analysis used when the decision call is
// unreachable or returns unusable output. It extracts the first numeric
// amount from the tenant message; an amount at or above the position is an
// acceptance, anything else keeps the position unchanged as a discussion.
func Fallback(message string, position int) Analysis {
	a := Analysis{
		TenantIntent:       IntentDiscussing,
		RecommendedCounter: &position,
		Reasoning:          "Fallback logic",
	}

	amount, ok := ExtractAmount(message)
	if !ok {
		return a
	}

	a.TenantOffer = &amount
	if amount >= position {
		a.TenantIntent = IntentAccepting
		a.ShouldAccept = true
		a.RecommendedCounter = nil
	}
	return a
}
