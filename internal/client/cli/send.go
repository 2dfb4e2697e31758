package cli

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/miniwallet/internal/client/wallet"
)

// getSimpleText is an indirection used to facilitate testing. It points to
// the interactive input helper and can be swapped in tests.
var getSimpleText = GetSimpleText

// Send walks the interactive send flow: recipient and amount on the send
// screen, an explicit confirmation on the review screen, then the outcome.
func (a *App) Send(ctx context.Context) {
	a.orchestrator.StartSend()

	recipient, err := getSimpleText(a.reader, "Recipient (address or @handle)", os.Stdout)
	if err != nil {
		return
	}
	amount, err := getSimpleText(a.reader, "Amount", os.Stdout)
	if err != nil {
		return
	}

	if err := a.orchestrator.ReviewSend(recipient, amount); err != nil {
		log.Printf("invalid input: %s", err.Error())
		a.orchestrator.ResetTransaction()
		return
	}

	confirm, err := getSimpleText(a.reader, "Send "+amount+" to "+recipient+"? (y/n)", os.Stdout)
	if err != nil || confirm != "y" {
		a.orchestrator.ResetTransaction()
		return
	}

	a.printOutcome(a.orchestrator.ConfirmSend(ctx))
}

// Convert executes a shield/unshield conversion: convert <toPrivate|toPublic> <amount>.
func (a *App) Convert(ctx context.Context, args []string) {
	if len(args) < 2 {
		log.Println("usage: convert <toPrivate|toPublic> <amount>")
		return
	}

	var direction wallet.Direction
	switch args[0] {
	case "toPrivate":
		direction = wallet.DirectionToPrivate
	case "toPublic":
		direction = wallet.DirectionToPublic
	default:
		log.Printf("unknown direction: %s", args[0])
		return
	}

	a.orchestrator.StartConversion(direction)
	a.printOutcome(a.orchestrator.ExecuteConversion(ctx, args[1]))
}
