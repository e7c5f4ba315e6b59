// Package stud records which horses are offered for breeding, at what fee and for how long.
package stud

import (
	"time"

	"github.com/shopspring/decimal"

	"studbook/horse"
	"studbook/ledger"
	"studbook/revert"
	"studbook/state"
	"studbook/tx"
)

// QueryPrice must be attached, exactly, to every PutInStud call.
var QueryPrice = decimal.RequireFromString("0.001")

// Allowed listing durations.
const (
	ThreeDays = 3 * 24 * time.Hour
	SixDays   = 6 * 24 * time.Hour
	NineDays  = 9 * 24 * time.Hour

	DefaultDuration = ThreeDays
)

// ValidDuration returns d when it is an allowed duration and DefaultDuration otherwise.
func ValidDuration(d time.Duration) time.Duration {
	switch d {
	case ThreeDays, SixDays, NineDays:
		return d
	default:
		return DefaultDuration
	}
}

// Service manages stud listings of horses held in the asset ledger.
type Service struct {
	admin  string
	store  state.Store
	ledger ledger.AssetLedger
}

// NewService returns a Service crediting query payments to admin.
func NewService(admin string, store state.Store, l ledger.AssetLedger) *Service {
	return &Service{
		admin:  admin,
		store:  store,
		ledger: l,
	}
}

// GetQueryPrice returns the price of a PutInStud call.
func (s *Service) GetQueryPrice() decimal.Decimal {
	return QueryPrice
}

// PutInStud lists a male horse owned by the caller, replacing any prior listing.
// Durations outside the allowed set are recorded as DefaultDuration.
// Ownership is read before the write, so calls must be serialized with transfers.
func (s *Service) PutInStud(call tx.Invocation, horseID uint64, fee decimal.Decimal, duration time.Duration) error {
	const op = "putInStud"

	attrs, err := s.ledger.GetAttributes(horseID)
	if err != nil {
		return err
	}

	if attrs.Sex != horse.Male {
		return revert.New(op, revert.ErrIneligibleAsset, "horse %d is %s", horseID, attrs.Sex)
	}
	if attrs.Owner != call.From {
		return revert.New(op, revert.ErrAuthorization, "%s does not own horse %d", call.From, horseID)
	}
	if !call.Value.Equal(QueryPrice) {
		return revert.New(op, revert.ErrPayment, "paid %s, query price is %s", call.Value, QueryPrice)
	}
	if fee.IsNegative() {
		return revert.New(op, revert.ErrInvalidArgument, "negative fee %s", fee)
	}

	listing := horse.StudListing{
		IsListed: true,
		Fee:      fee,
		Duration: ValidDuration(duration),
	}

	return s.store.Update(func(t state.Tx) error {
		if err := t.PutListing(horseID, listing); err != nil {
			return err
		}
		return t.Credit(s.admin, call.Value)
	})
}

// RemoveFromStud clears the listing of a horse owned by the caller.
// Clearing a horse that is not listed succeeds.
func (s *Service) RemoveFromStud(call tx.Invocation, horseID uint64) error {
	attrs, err := s.ledger.GetAttributes(horseID)
	if err != nil {
		return err
	}
	if !attrs.Exists() {
		return revert.New("removeFromStud", revert.ErrIneligibleAsset, "horse %d does not exist", horseID)
	}
	if attrs.Owner != call.From {
		return revert.New("removeFromStud", revert.ErrAuthorization, "%s does not own horse %d", call.From, horseID)
	}

	return s.store.Update(func(t state.Tx) error {
		return t.PutListing(horseID, horse.StudListing{})
	})
}

// StudInfo returns the current listing of a horse.
func (s *Service) StudInfo(horseID uint64) (horse.StudListing, error) {
	var listing horse.StudListing
	err := s.store.View(func(t state.Tx) error {
		var err error
		listing, err = t.Listing(horseID)
		return err
	})
	return listing, err
}
