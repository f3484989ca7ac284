// Package oracle defines the double-dummy solver adapter contract and a
// bundled reference implementation suitable for small residual hands and for
// tests; a native or pure solver can be wired in behind the same interface.
package oracle

import (
	"bridgecard/deal"
)

// Oracle is the double-dummy wire contract every evaluator speaks: reset
// with a deal, apply a trailing sequence of plays, then query the number of
// tricks remaining for the side to act. Implementations are free to wrap a
// native or pure solver. The engine does not probe the oracle at startup:
// New is called once per leaf evaluation, and an error from it is logged
// and counted as zero further tricks (see playout.World.Tricks).
type Oracle interface {
	// New builds a handle over a fully specified deal, with strain and the
	// seat to act first recorded for the eventual GetTricksToTake call.
	New(hands deal.Hands, strain deal.Strain, leader deal.Seat) (Handle, error)
}

// Handle is a single double-dummy evaluation in progress. No handle is
// shared across goroutines; each evaluation constructs and releases its own.
type Handle interface {
	// Exec applies a whitespace-separated sequence of plays (two characters
	// each, "<rank><suit>") on top of the handle's current position.
	Exec(command string) error
	// GetTricksToTake returns, in [0, 13], the number of tricks the seat
	// currently on lead will win with double-dummy play from here on.
	GetTricksToTake() (int, error)
	// Delete releases the handle. Must be called exactly once.
	Delete()
}
