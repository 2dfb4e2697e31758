// Package wallet implements the screen/transaction state machine of the
// mini-app wallet: balance aggregation, drafts for sends and conversions,
// and the action layer that turns user intents into authenticated backend
// calls with uniform multi-step results.
package wallet

// Screen is a state of the wallet flow.
type Screen string

const (
	// ScreenOnboarding is entered only when the authenticated user has no
	// existing wallet, and left permanently once creation or claim succeeds.
	ScreenOnboarding Screen = "onboarding"
	ScreenBalance    Screen = "balance"
	ScreenSend       Screen = "send"
	ScreenReview     Screen = "review"
	ScreenConvert    Screen = "convert"
	ScreenStatus     Screen = "status"
)

// ConfidentialBalance splits a token balance into its publicly visible and
// encrypted parts. Total is always Public + Private; Private is the sum of
// the source's available and pending sub-balances.
type ConfidentialBalance struct {
	Public  float64
	Private float64
	Total   float64
}

// View is the aggregated wallet state shown on the balance screen.
type View struct {
	Address       string
	NativeBalance float64
	Confidential  ConfidentialBalance
}

// RecipientKind classifies a send target.
type RecipientKind string

const (
	RecipientAddress RecipientKind = "address"
	RecipientHandle  RecipientKind = "handle"
)

// TransferDraft is mutated incrementally by the send and review screens and
// consumed exactly once by the confirm action.
type TransferDraft struct {
	Recipient string
	Amount    string
	Kind      RecipientKind
	Network   string
}

// Direction selects which conversion endpoint is called and which balance
// bucket the amount is validated against.
type Direction string

const (
	// DirectionToPrivate shields public balance (deposit).
	DirectionToPrivate Direction = "toPrivate"
	// DirectionToPublic unshields private balance (withdraw).
	DirectionToPublic Direction = "toPublic"
)

// ConversionDraft is the pending shield/unshield request.
type ConversionDraft struct {
	Direction Direction
	Amount    string
}

// OutcomeStatus is the terminal state of one logical user action.
type OutcomeStatus string

const (
	OutcomePending OutcomeStatus = "pending"
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
)

// Step is one signed on-chain instruction executed for a logical action.
type Step struct {
	Label       string
	TxID        string
	Description string
}

// Outcome accumulates every step of a send, conversion or mint. All steps
// are surfaced together, not just the first or last.
type Outcome struct {
	Status  OutcomeStatus
	Message string
	Steps   []Step
}
