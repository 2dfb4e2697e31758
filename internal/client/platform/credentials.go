// Package platform abstracts the chat-platform host. The host injects a
// signed identity assertion (the mini-app "init data") into the client's
// environment; this package only hands it over, it never interprets or
// verifies it — the backend owns verification.
package platform

import (
	"context"
	"os"
	"strings"

	"github.com/dmitrijs2005/miniwallet/internal/common"
)

// CredentialSource obtains the raw platform-issued identity assertion.
type CredentialSource interface {
	// Available reports whether an assertion can be obtained at all, i.e.
	// whether the client runs inside a platform context.
	Available() bool
	// Assertion returns the raw assertion. It returns
	// common.ErrNoCredentialSource when none is available.
	Assertion(ctx context.Context) (string, error)
}

// EnvAssertionVar is the environment variable the host sets with the signed
// launch payload.
const EnvAssertionVar = "MINIAPP_INIT_DATA"

// EnvSource reads the assertion from the process environment. It is a pure
// function of the environment and holds no state.
type EnvSource struct {
	varName string
}

// NewEnvSource returns an EnvSource reading varName, or EnvAssertionVar when
// varName is empty.
func NewEnvSource(varName string) *EnvSource {
	if varName == "" {
		varName = EnvAssertionVar
	}
	return &EnvSource{varName: varName}
}

func (s *EnvSource) Available() bool {
	return strings.TrimSpace(os.Getenv(s.varName)) != ""
}

func (s *EnvSource) Assertion(ctx context.Context) (string, error) {
	v := strings.TrimSpace(os.Getenv(s.varName))
	if v == "" {
		return "", common.ErrNoCredentialSource
	}
	return v, nil
}

// StaticSource returns a fixed assertion; used by tests and by hosts that
// pass the launch payload directly instead of via the environment.
type StaticSource struct {
	Value string
}

func (s *StaticSource) Available() bool {
	return s.Value != ""
}

func (s *StaticSource) Assertion(ctx context.Context) (string, error) {
	if s.Value == "" {
		return "", common.ErrNoCredentialSource
	}
	return s.Value, nil
}
