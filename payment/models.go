// Package payment models the payment facts delivered by the external
// settlement ledger. Facts are already final when the membership core sees
// them; the core only checks their fields.
package payment

import (
	"github.com/xraph/membership/id"
	"github.com/xraph/membership/types"
)

// Fact is an immutable record of a single settled payment.
type Fact struct {
	// ID is the ledger's reference for the payment. Optional; used for
	// logging and audit only.
	ID       id.PaymentID   `json:"id"`
	Sender   types.Identity `json:"sender"`
	Receiver types.Identity `json:"receiver"`
	Amount   types.Amount   `json:"amount"`
}

// Ref returns the payment reference or an empty string.
func (f Fact) Ref() string {
	return f.ID.String()
}
