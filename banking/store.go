package banking

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStore persists bank transactions under their composite key.
type TransactionStore interface {
	// Exists checks the (operation date, amount, currency) composite key.
	Exists(ctx context.Context, operationDate time.Time, amount decimal.Decimal, currency string) (bool, error)

	Add(ctx context.Context, t *Transaction) error

	// GetAll returns transactions ordered by operation date, newest first.
	GetAll(ctx context.Context) ([]*Transaction, error)
}

// ImportStore persists import runs and their per-row audit details.
type ImportStore interface {
	// GetByFileHash returns the import that processed a file with this
	// content hash, or an error wrapping club.ErrNotFound.
	GetByFileHash(ctx context.Context, hash string) (*Import, error)

	Add(ctx context.Context, i *Import) error
	Update(ctx context.Context, i *Import) error
	AddDetail(ctx context.Context, d *ImportDetail) error

	// GetAll returns imports ordered by import date, newest first.
	GetAll(ctx context.Context) ([]*Import, error)

	// GetDetails returns the audit rows of one import, by row number.
	GetDetails(ctx context.Context, importID string) ([]*ImportDetail, error)
}
