package horse

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sex of a horse. The zero value is used for horses that do not exist.
type Sex uint8

// Sexes.
const (
	Unknown Sex = iota
	Male
	Female
)

func (s Sex) String() string {
	switch s {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return "unknown"
	}
}

// Bloodline is the lineage tag assigned at creation.
type Bloodline string

// Bloodlines.
const (
	Nakamoto Bloodline = "N"
	Szabo    Bloodline = "S"
	Finney   Bloodline = "F"
	Buterin  Bloodline = "B"
)

// Traits are fixed when a horse is created and never change afterwards.
type Traits struct {
	Genotype  uint8
	Bloodline Bloodline
	Sex       Sex
}

// Attributes is the record the asset ledger keeps for a horse.
type Attributes struct {
	ID          uint64
	Owner       string
	ContentHash string
	Traits
}

// Exists reports whether the record belongs to a registered horse.
func (a Attributes) Exists() bool {
	return a.Owner != ""
}

// StudListing records whether a horse is offered for breeding.
// Duration is inert data, nothing expires a listing.
type StudListing struct {
	IsListed bool
	Fee      decimal.Decimal
	Duration time.Duration
}
