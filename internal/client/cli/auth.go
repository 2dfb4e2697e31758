package cli

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/dmitrijs2005/miniwallet/internal/common"
)

// Login runs the platform identity exchange. A concurrent exchange is
// reported, not queued behind.
func (a *App) Login(ctx context.Context) {
	if err := a.session.Authenticate(ctx); err != nil {
		if errors.Is(err, common.ErrAuthInProgress) {
			log.Println("Authentication already in progress")
			return
		}
		log.Printf("Login unsuccessful: %s", err.Error())
		return
	}
	log.Println("Login successful")
	a.bootstrapWallet(ctx)
}

// Logout clears the persisted session and in-memory state.
func (a *App) Logout(ctx context.Context) {
	if err := a.session.Logout(ctx); err != nil {
		log.Printf("Logout failed: %s", err.Error())
	}
}

// ShowStatus prints the session status and, when present, its message.
func (a *App) ShowStatus() {
	status, message := a.session.Status()
	if message != "" {
		fmt.Printf("%s: %s\n", status, message)
		return
	}
	fmt.Println(status)
}
