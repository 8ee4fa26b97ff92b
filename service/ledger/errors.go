package ledger

import "errors"

// ErrInsufficientBalance rejects a transfer whose price exceeds the buyer's
// balance. When it is returned nothing has been mutated.
var ErrInsufficientBalance = errors.New("insufficient balance")
