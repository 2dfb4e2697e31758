package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/dmitrijs2005/miniwallet/internal/client/wallet"
)

// Wallet handles "wallet create" and "wallet claim".
func (a *App) Wallet(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Printf("wallet address: %s\n", a.orchestrator.Address())
		return
	}
	var err error
	switch args[0] {
	case "create":
		err = a.orchestrator.CreateWallet(ctx)
	case "claim":
		err = a.orchestrator.ClaimWallet(ctx)
	default:
		log.Printf("unknown wallet subcommand: %s", args[0])
		return
	}
	if err != nil {
		log.Printf("wallet %s failed: %s", args[0], err.Error())
		return
	}
	fmt.Printf("wallet address: %s\n", a.orchestrator.Address())
}

// Balance refreshes the aggregated view and prints it.
func (a *App) Balance(ctx context.Context) {
	view := a.orchestrator.RefreshBalance(ctx)
	fmt.Printf("native:  %g\n", view.NativeBalance)
	fmt.Printf("public:  %g\n", view.Confidential.Public)
	fmt.Printf("private: %g\n", view.Confidential.Private)
	fmt.Printf("total:   %g\n", view.Confidential.Total)
}

// Airdrop requests test-network funding, with an optional amount argument.
func (a *App) Airdrop(ctx context.Context, args []string) {
	amount := ""
	if len(args) > 0 {
		amount = args[0]
	}
	a.printOutcome(a.orchestrator.Airdrop(ctx, amount))
}

// MintTokens mints the given decimal amount to the active wallet.
func (a *App) MintTokens(ctx context.Context, args []string) {
	if len(args) == 0 {
		log.Println("usage: mint <amount>")
		return
	}
	a.printOutcome(a.orchestrator.Mint(ctx, args[0]))
}

func (a *App) printOutcome(outcome *wallet.Outcome) {
	fmt.Printf("%s: %s\n", outcome.Status, outcome.Message)
	for i, step := range outcome.Steps {
		fmt.Printf("  %d. %s  %s\n", i+1, step.Label, step.TxID)
	}
}
