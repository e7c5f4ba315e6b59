// Package ledger defines the asset-of-record store the registry builds on.
package ledger

import (
	"studbook/horse"
)

// AssetLedger registers horses and reads their records.
type AssetLedger interface {
	// RegisterAsset creates a horse owned by owner and returns its id.
	RegisterAsset(owner string, genotype uint8, bloodline horse.Bloodline, contentHash string) (uint64, error)
	// GetAttributes returns the record of a horse. Unknown ids read as zero attributes.
	GetAttributes(id uint64) (horse.Attributes, error)
}

// TraitReader is implemented by ledgers that can serve immutable traits without
// reading the full record.
type TraitReader interface {
	Traits(id uint64) (horse.Traits, error)
}

func traits(l AssetLedger, id uint64) (horse.Traits, error) {
	if r, ok := l.(TraitReader); ok {
		return r.Traits(id)
	}

	attrs, err := l.GetAttributes(id)
	if err != nil {
		return horse.Traits{}, err
	}
	return attrs.Traits, nil
}

// GetGenotype returns the genotype of a horse, 0 if it does not exist.
func GetGenotype(l AssetLedger, id uint64) (uint8, error) {
	t, err := traits(l, id)
	return t.Genotype, err
}

// GetBloodline returns the bloodline of a horse, empty if it does not exist.
func GetBloodline(l AssetLedger, id uint64) (horse.Bloodline, error) {
	t, err := traits(l, id)
	return t.Bloodline, err
}
