package wallet

import (
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/miniwallet/internal/common"
)

var (
	// Base58 alphabet (no 0, O, I, l), the length range of on-chain addresses.
	addressPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
	// Platform handle: leading @, then 5-32 word characters.
	handlePattern = regexp.MustCompile(`^@[A-Za-z0-9_]{5,32}$`)
)

// ClassifyRecipient decides whether the input is an on-chain address or a
// platform handle. Anything else is a validation error; no network call is
// made for unclassifiable input.
func ClassifyRecipient(input string) (RecipientKind, error) {
	switch {
	case addressPattern.MatchString(input):
		return RecipientAddress, nil
	case handlePattern.MatchString(input):
		return RecipientHandle, nil
	default:
		return "", fmt.Errorf("%w: %q is neither an address nor a handle", common.ErrValidation, input)
	}
}

// validateSpendable confirms the amount does not exceed the currently known
// spendable balance of the selected bucket.
func validateSpendable(amount, spendable float64) error {
	if amount > spendable {
		return fmt.Errorf("%w: amount %g exceeds spendable balance %g", common.ErrValidation, amount, spendable)
	}
	return nil
}
