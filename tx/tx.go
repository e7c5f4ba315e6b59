package tx

import (
	"github.com/shopspring/decimal"
)

// Invocation carries the principal that sent a call and the value attached to it.
type Invocation struct {
	From  string
	Value decimal.Decimal
}

// From returns an invocation without attached value.
func From(addr string) Invocation {
	return Invocation{
		From:  addr,
		Value: decimal.Zero,
	}
}

// WithValue returns a copy of the invocation carrying value.
func (inv Invocation) WithValue(value decimal.Decimal) Invocation {
	inv.Value = value
	return inv
}
