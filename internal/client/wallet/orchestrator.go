package wallet

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/miniwallet/internal/client/api"
	"github.com/dmitrijs2005/miniwallet/internal/client/session"
	"github.com/dmitrijs2005/miniwallet/internal/common"
	"github.com/dmitrijs2005/miniwallet/internal/logging"
)

// Config carries the token and network parameters the orchestrator operates
// against.
type Config struct {
	Mint     string
	Decimals uint8
	Network  string
}

// Orchestrator is the wallet screen/transaction state machine. It owns the
// wallet view, the pending drafts and the outcome of the last action, and it
// only ever reaches the backend through the session manager's Fetch wrapper —
// it never touches the token itself.
//
// Remote failures during confirm, convert and mint are absorbed into a
// failed Outcome; the state machine never auto-retries. Retrying is always a
// user-initiated re-submission.
type Orchestrator struct {
	session  *session.Manager
	balances *BalanceAggregator
	log      logging.Logger
	cfg      Config

	mu              sync.Mutex
	screen          Screen
	address         string
	view            View
	transferDraft   TransferDraft
	conversionDraft ConversionDraft
	outcome         *Outcome
}

// NewOrchestrator wires the state machine to the session manager.
func NewOrchestrator(sess *session.Manager, cfg Config, log logging.Logger) *Orchestrator {
	return &Orchestrator{
		session:  sess,
		balances: NewBalanceAggregator(sess, cfg.Mint, cfg.Decimals, log),
		log:      log.With("component", "wallet"),
		cfg:      cfg,
		screen:   ScreenOnboarding,
	}
}

// Screen returns the current screen.
func (o *Orchestrator) Screen() Screen {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.screen
}

// Address returns the active wallet address, empty before onboarding
// completes.
func (o *Orchestrator) Address() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.address
}

// View returns the last aggregated wallet view.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view
}

// Outcome returns the result of the last action, or nil when none is
// pending.
func (o *Orchestrator) Outcome() *Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcome == nil {
		return nil
	}
	copied := *o.outcome
	return &copied
}

func (o *Orchestrator) adoptAddress(address string) {
	o.mu.Lock()
	o.address = address
	o.screen = ScreenBalance
	o.mu.Unlock()
}

// DiscoverWallet looks for an already provisioned wallet. When one exists
// its first address is adopted and the onboarding screen is skipped.
func (o *Orchestrator) DiscoverWallet(ctx context.Context) (bool, error) {
	resp, err := session.FetchAs[api.ListWalletsResponse](ctx, o.session,
		api.NewRequest(http.MethodGet, "/wallets"))
	if err != nil {
		return false, err
	}
	if len(resp.Addresses) == 0 {
		return false, nil
	}
	o.adoptAddress(resp.Addresses[0])
	o.log.Info(ctx, "adopted existing wallet", "address", resp.Addresses[0])
	return true, nil
}

// CreateWallet provisions a fresh wallet and leaves onboarding permanently.
func (o *Orchestrator) CreateWallet(ctx context.Context) error {
	resp, err := session.FetchAs[api.CreateWalletResponse](ctx, o.session,
		api.NewRequest(http.MethodPost, "/wallets"))
	if err != nil {
		return err
	}
	o.adoptAddress(resp.Address)
	o.log.Info(ctx, "wallet created", "address", resp.Address)
	return nil
}

// ClaimWallet binds a wallet pre-reserved for the user's handle to the now
// authenticated identity. The claim endpoint is idempotent; claiming an
// already bound wallet returns the same address.
func (o *Orchestrator) ClaimWallet(ctx context.Context) error {
	resp, err := session.FetchAs[api.CreateWalletResponse](ctx, o.session,
		api.NewRequest(http.MethodPost, "/wallets/claim"))
	if err != nil {
		return err
	}
	o.adoptAddress(resp.Address)
	o.log.Info(ctx, "wallet claimed", "address", resp.Address)
	return nil
}

// RefreshBalance replaces the stored view with a freshly aggregated one.
// Aggregation is best-effort and never fails.
func (o *Orchestrator) RefreshBalance(ctx context.Context) View {
	o.mu.Lock()
	address := o.address
	o.mu.Unlock()

	view := o.balances.Aggregate(ctx, address)

	o.mu.Lock()
	o.view = view
	o.mu.Unlock()
	return view
}

// Airdrop requests test-network funding for the active wallet. An empty
// amount uses the backend default.
func (o *Orchestrator) Airdrop(ctx context.Context, amount string) *Outcome {
	req := api.NewRequest(http.MethodPost, "/wallets/%s/airdrop", o.Address()).
		WithBody(api.AirdropRequest{Amount: amount})
	resp, err := session.FetchAs[api.AirdropResponse](ctx, o.session, req)
	if err != nil {
		return o.failAction(ctx, "airdrop", err)
	}
	return o.finishAction(ctx, fmt.Sprintf("Airdropped %s base units", resp.Amount),
		[]Step{{Label: "Airdrop", TxID: resp.Signature}})
}

// Mint mints tokens to the active wallet; the single returned signature is
// wrapped into a one-step outcome.
func (o *Orchestrator) Mint(ctx context.Context, amount string) *Outcome {
	if _, err := parsePositiveAmount(amount); err != nil {
		return o.failAction(ctx, "mint", err)
	}
	req := api.NewRequest(http.MethodPost, "/tokens/%s/mint", o.Address()).
		WithBody(api.MintRequest{Mint: o.cfg.Mint, Amount: amount})
	resp, err := session.FetchAs[api.MintResponse](ctx, o.session, req)
	if err != nil {
		return o.failAction(ctx, "mint", err)
	}
	return o.finishAction(ctx, "Minted "+amount,
		[]Step{{Label: "Mint", TxID: resp.Signature}})
}

// StartSend resets the transfer draft and opens the send screen.
func (o *Orchestrator) StartSend() {
	o.mu.Lock()
	o.transferDraft = TransferDraft{Network: o.cfg.Network}
	o.outcome = nil
	o.screen = ScreenSend
	o.mu.Unlock()
}

// ReviewSend validates the recipient and amount, fills the draft and moves
// to the review screen. Classification failure and balance insufficiency
// both surface before any network call.
func (o *Orchestrator) ReviewSend(recipient, amount string) error {
	kind, err := ClassifyRecipient(recipient)
	if err != nil {
		return err
	}
	value, err := parsePositiveAmount(amount)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	// Sends spend the confidential bucket.
	if err := validateSpendable(value, o.view.Confidential.Private); err != nil {
		return err
	}
	o.transferDraft.Recipient = recipient
	o.transferDraft.Amount = amount
	o.transferDraft.Kind = kind
	o.screen = ScreenReview
	return nil
}

// ConfirmSend consumes the draft exactly once and executes the transfer,
// addressing the recipient by literal address or by resolved handle.
func (o *Orchestrator) ConfirmSend(ctx context.Context) *Outcome {
	o.mu.Lock()
	draft := o.transferDraft
	address := o.address
	o.mu.Unlock()

	if draft.Recipient == "" {
		return o.failAction(ctx, "send",
			fmt.Errorf("%w: nothing to confirm", common.ErrValidation))
	}

	baseUnits, err := ToBaseUnits(draft.Amount, o.cfg.Decimals)
	if err != nil {
		return o.failAction(ctx, "send", err)
	}

	switch draft.Kind {
	case RecipientHandle:
		return o.transferByHandle(ctx, address, draft.Recipient, baseUnits)
	default:
		return o.transfer(ctx, address, draft.Recipient, baseUnits)
	}
}

// Transfer sends base units to a literal on-chain address. The returned
// steps cover every signed instruction the backend executed; an empty step
// list on a successful call is an application-level failure.
func (o *Orchestrator) Transfer(ctx context.Context, recipient string, amountBaseUnits uint64) *Outcome {
	return o.transfer(ctx, o.Address(), recipient, amountBaseUnits)
}

func (o *Orchestrator) transfer(ctx context.Context, source, recipient string, amountBaseUnits uint64) *Outcome {
	req := api.NewRequest(http.MethodPost, "/transfers").
		WithBody(api.TransferRequest{
			Source:    source,
			Recipient: recipient,
			Mint:      o.cfg.Mint,
			Amount:    strconv.FormatUint(amountBaseUnits, 10),
		})
	resp, err := session.FetchAs[api.TransferResponse](ctx, o.session, req)
	if err != nil {
		return o.failAction(ctx, "transfer", err)
	}
	return o.finishSteps(ctx, "Transfer complete", resp.Transactions)
}

// TransferByHandle sends base units to a platform handle. The backend
// resolves (or reserves) the recipient wallet.
func (o *Orchestrator) TransferByHandle(ctx context.Context, handle string, amountBaseUnits uint64) *Outcome {
	return o.transferByHandle(ctx, o.Address(), handle, amountBaseUnits)
}

func (o *Orchestrator) transferByHandle(ctx context.Context, source, handle string, amountBaseUnits uint64) *Outcome {
	req := api.NewRequest(http.MethodPost, "/transfers/telegram").
		WithBody(api.HandleTransferRequest{
			Source:           source,
			TelegramUsername: trimHandle(handle),
			Mint:             o.cfg.Mint,
			Amount:           strconv.FormatUint(amountBaseUnits, 10),
		})
	resp, err := session.FetchAs[api.HandleTransferResponse](ctx, o.session, req)
	if err != nil {
		return o.failAction(ctx, "transfer", err)
	}
	message := "Transfer complete"
	if resp.Recipient.NewWallet {
		message = fmt.Sprintf("Transfer complete; a wallet was reserved for @%s", resp.Recipient.Username)
	}
	return o.finishSteps(ctx, message, resp.Transactions)
}

// StartConversion resets the conversion draft and opens the convert screen.
func (o *Orchestrator) StartConversion(direction Direction) {
	o.mu.Lock()
	o.conversionDraft = ConversionDraft{Direction: direction}
	o.outcome = nil
	o.screen = ScreenConvert
	o.mu.Unlock()
}

// ExecuteConversion validates the amount, converts it to base units and
// calls the deposit (toPrivate) or withdraw (toPublic) endpoint.
func (o *Orchestrator) ExecuteConversion(ctx context.Context, amount string) *Outcome {
	value, err := parsePositiveAmount(amount)
	if err != nil {
		return o.failAction(ctx, "convert",
			fmt.Errorf("%w: %w", common.ErrConversion, err))
	}

	o.mu.Lock()
	direction := o.conversionDraft.Direction
	o.conversionDraft.Amount = amount
	address := o.address
	bucket := o.view.Confidential.Public
	if direction == DirectionToPublic {
		bucket = o.view.Confidential.Private
	}
	o.mu.Unlock()

	if err := validateSpendable(value, bucket); err != nil {
		return o.failAction(ctx, "convert", err)
	}

	baseUnits, err := ToBaseUnits(amount, o.cfg.Decimals)
	if err != nil {
		return o.failAction(ctx, "convert", err)
	}

	path := "/wallets/%s/deposit"
	if direction == DirectionToPublic {
		path = "/wallets/%s/withdraw"
	}
	req := api.NewRequest(http.MethodPost, path, address).
		WithBody(api.ConvertRequest{
			Mint:            o.cfg.Mint,
			AmountBaseUnits: strconv.FormatUint(baseUnits, 10),
			Decimals:        o.cfg.Decimals,
		})
	resp, err := session.FetchAs[api.ConvertResponse](ctx, o.session, req)
	if err != nil {
		return o.failAction(ctx, "convert", err)
	}
	return o.finishSteps(ctx, "Conversion complete", resp.Transactions)
}

// ResetTransaction clears the drafts and the outcome and returns to the
// balance screen. It is idempotent.
func (o *Orchestrator) ResetTransaction() {
	o.mu.Lock()
	o.transferDraft = TransferDraft{}
	o.conversionDraft = ConversionDraft{}
	o.outcome = nil
	o.screen = ScreenBalance
	o.mu.Unlock()
}

func trimHandle(handle string) string {
	if len(handle) > 0 && handle[0] == '@' {
		return handle[1:]
	}
	return handle
}

// finishSteps normalizes a multi-signature result into a uniform step list.
// A successful call that executed no transactions still fails the action.
func (o *Orchestrator) finishSteps(ctx context.Context, message string, results []api.TransactionResult) *Outcome {
	if len(results) == 0 {
		// The HTTP call succeeded but nothing ran on chain; treat it the
		// same as any other failed action.
		outcome := &Outcome{Status: OutcomeFailed, Message: "no transactions were executed"}
		o.mu.Lock()
		o.outcome = outcome
		o.mu.Unlock()
		return outcome
	}
	steps := make([]Step, 0, len(results))
	for _, r := range results {
		steps = append(steps, Step{Label: r.Label, TxID: r.Signature})
	}
	return o.finishAction(ctx, message, steps)
}

func (o *Orchestrator) finishAction(ctx context.Context, message string, steps []Step) *Outcome {
	outcome := &Outcome{Status: OutcomeSuccess, Message: message, Steps: steps}
	o.setOutcome(outcome)
	o.log.Info(ctx, "action complete", "steps", len(steps))
	return outcome
}

// failAction turns any failure into a failed outcome with a sanitized
// message. The error never propagates past this boundary; the state machine
// stays on the action screen and the user decides whether to re-submit.
func (o *Orchestrator) failAction(ctx context.Context, action string, err error) *Outcome {
	outcome := &Outcome{Status: OutcomeFailed, Message: api.CleanMessage(err)}
	// The screen does not advance on failure; the user stays where they are
	// and may re-submit.
	o.mu.Lock()
	o.outcome = outcome
	o.mu.Unlock()
	o.log.Warn(ctx, "action failed", "action", action, "error", err)
	return outcome
}

func (o *Orchestrator) setOutcome(outcome *Outcome) {
	o.mu.Lock()
	o.outcome = outcome
	o.screen = ScreenStatus
	o.mu.Unlock()
}
