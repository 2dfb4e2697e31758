// Package cli is the interactive shell of the miniwallet client. It is a
// thin presentation layer: every behavior lives in the session and wallet
// services, and the shell only renders their state and forwards user input.
package cli
