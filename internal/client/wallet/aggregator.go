package wallet

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/miniwallet/internal/client/api"
	"github.com/dmitrijs2005/miniwallet/internal/client/session"
	"github.com/dmitrijs2005/miniwallet/internal/logging"
)

// BalanceAggregator combines the native-asset and confidential-asset
// balances into one View. The two sources fail independently: a failed fetch
// degrades its contribution to zero instead of aborting the whole view, so
// Aggregate never returns an error.
type BalanceAggregator struct {
	session  *session.Manager
	log      logging.Logger
	mint     string
	decimals uint8
}

// NewBalanceAggregator builds an aggregator for the given token mint.
func NewBalanceAggregator(sess *session.Manager, mint string, decimals uint8, log logging.Logger) *BalanceAggregator {
	return &BalanceAggregator{
		session:  sess,
		log:      log.With("component", "balance"),
		mint:     mint,
		decimals: decimals,
	}
}

// Aggregate fetches both balances concurrently and waits for both to settle
// regardless of individual failure.
func (a *BalanceAggregator) Aggregate(ctx context.Context, address string) View {
	view := View{Address: address}

	var g errgroup.Group
	g.Go(func() error {
		resp, err := session.FetchAs[api.NativeBalanceResponse](ctx, a.session,
			api.NewRequest(http.MethodGet, "/wallets/%s/balance/native", address))
		if err != nil {
			a.log.Warn(ctx, "native balance fetch failed", "error", err)
			return nil
		}
		view.NativeBalance = FromBaseUnits(resp.AmountBaseUnits, a.decimals)
		return nil
	})
	g.Go(func() error {
		resp, err := session.FetchAs[api.TokenBalanceResponse](ctx, a.session,
			api.NewRequest(http.MethodGet, "/wallets/%s/balance", address).
				WithQuery("mint", a.mint))
		if err != nil {
			a.log.Warn(ctx, "confidential balance fetch failed", "error", err)
			return nil
		}
		public := FromBaseUnits(resp.PublicAmountBaseUnits, a.decimals)
		// Both available and pending count toward spendable private balance.
		private := FromBaseUnits(resp.EncryptedBalance.Available, a.decimals) +
			FromBaseUnits(resp.EncryptedBalance.Pending, a.decimals)
		view.Confidential = ConfidentialBalance{
			Public:  public,
			Private: private,
			Total:   public + private,
		}
		return nil
	})
	// The goroutines always return nil; failures are already degraded.
	_ = g.Wait()

	return view
}
