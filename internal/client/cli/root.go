package cli

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dmitrijs2005/miniwallet/internal/client/session"
)

func (a *App) getStatus() string {
	s := ""
	if current := a.session.Current(); current != nil && current.User.Username != "" {
		s = "@" + current.User.Username + " "
	}
	status, _ := a.session.Status()
	s += string(status)
	if a.Mode != "" {
		s += " " + string(a.Mode)
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to miniwallet (type 'help' for commands)")

	a.session.Initialize(ctx)
	a.bootstrapWallet(ctx)

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.HealthCheckInterval)
	}()

	for {
		fmt.Printf("mw %s [%s]> ", a.getStatus(), a.orchestrator.Screen())
		line, err := a.reader.ReadString('\n')
		if err != nil {
			break
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			a.Help()
		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "status":
			a.ShowStatus()
		case "wallet":
			a.Wallet(ctx, args)
		case "balance":
			a.Balance(ctx)
		case "airdrop":
			a.Airdrop(ctx, args)
		case "mint":
			a.MintTokens(ctx, args)
		case "send":
			a.Send(ctx)
		case "convert":
			a.Convert(ctx, args)
		case "reset":
			a.orchestrator.ResetTransaction()
		case "exit", "quit":
			return
		default:
			log.Printf("unknown command: %s", cmd)
		}
	}
}

// bootstrapWallet mirrors the mini-app mount: once authenticated, look for
// an existing wallet and land on the balance screen, otherwise stay in
// onboarding.
func (a *App) bootstrapWallet(ctx context.Context) {
	status, _ := a.session.Status()
	if status != session.StatusAuthenticated {
		return
	}
	found, err := a.orchestrator.DiscoverWallet(ctx)
	if err != nil {
		log.Printf("wallet discovery failed: %s", err.Error())
		return
	}
	if !found {
		log.Println("No wallet yet; use 'wallet create' or 'wallet claim'")
		return
	}
	a.orchestrator.RefreshBalance(ctx)
}

func (a *App) Help() {
	fmt.Println(`Commands:
  login            authenticate with the platform assertion
  logout           clear the persisted session
  status           show session status
  wallet create    provision a new wallet
  wallet claim     claim a wallet reserved for your handle
  balance          refresh and show balances
  airdrop [amt]    request test-network funding
  mint <amount>    mint tokens to the wallet
  send             interactive send flow
  convert <dir> <amount>
                   shield (toPrivate) or unshield (toPublic)
  reset            dismiss the last outcome, back to balance
  exit             quit`)
}
