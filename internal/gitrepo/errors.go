// Package gitrepo owns the local version-controlled working copy used by the
// backup engine. All errors can be checked using errors.Is() for programmatic
// handling.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// ErrNotInitialized is returned when an operation requires a working copy
// that has not been opened or created yet.
var ErrNotInitialized = errors.New("working copy not initialized")

// ErrNoChanges is returned when a commit is requested but the index is clean.
var ErrNoChanges = errors.New("no changes to commit")

// ErrDivergence is returned when a push is rejected because the remote branch
// contains commits not present in the local branch's ancestry.
var ErrDivergence = errors.New("remote history has diverged")

// ErrAuthFailed is returned when the remote rejects the provided credential.
var ErrAuthFailed = errors.New("authentication failed")

// ErrNetworkFailure is returned when a network operation times out or the
// remote is unreachable.
var ErrNetworkFailure = errors.New("network failure")

// ErrIncompleteConfig is returned when the sync configuration is missing one
// of its required fields.
var ErrIncompleteConfig = errors.New("incomplete sync configuration")

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// classifyRemoteError routes go-git transport errors into the closed sentinel
// set. Only divergence-shaped rejections map to ErrDivergence; everything
// else must surface as its own category so the caller never force-pushes
// over an auth or network problem.
func classifyRemoteError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, git.ErrNonFastForwardUpdate):
		return WrapError(ErrDivergence, err.Error())
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed),
		errors.Is(err, transport.ErrInvalidAuthMethod):
		return WrapError(ErrAuthFailed, err.Error())
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return WrapError(ErrNetworkFailure, err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return WrapError(ErrNetworkFailure, err.Error())
	}

	// go-git reports rejected ref updates as formatted strings rather than
	// wrapped sentinels, so the shape check falls back to the message.
	msg := err.Error()
	if strings.Contains(msg, "non-fast-forward update") ||
		strings.Contains(msg, "fetch first") ||
		strings.Contains(msg, "failed to update ref") {
		return WrapError(ErrDivergence, msg)
	}
	if strings.Contains(msg, "authentication required") ||
		strings.Contains(msg, "authorization failed") {
		return WrapError(ErrAuthFailed, msg)
	}

	return err
}
