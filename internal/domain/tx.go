package domain

import "context"

// TxManager runs fn inside a storage transaction. Repositories called with the
// ctx passed to fn take part in that transaction. Nested calls join the
// outer transaction. Any error from fn rolls everything back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
