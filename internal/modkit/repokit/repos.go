// Package repokit provides the seams repositories are built against
package repokit

import (
	"context"

	"critiq/internal/platform/store"
)

// Queryer is the read/write surface a repo needs from the database
type Queryer = store.RowQuerier

// TxRunner runs a function inside a transaction
type TxRunner = store.TxRunner

type (
	// Rows is a multi-row result set
	Rows = store.Rows

	// Row is a single-row result
	Row = store.Row

	// CommandTag reports the outcome of a data-modifying command
	CommandTag = store.CommandTag
)

// WithTx runs fn in a transaction, handing it the transactional Queryer
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}
