package cache

import (
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"studbook/horse"
	"studbook/ledger"
)

// TraitCache wraps an AssetLedger and remembers the immutable traits of every
// horse it has seen. Owners change outside the registry and are always read
// from the wrapped ledger.
type TraitCache struct {
	ledger.AssetLedger
	traits *gocache.Cache
}

// NewTraitCache returns a TraitCache keeping entries for expiry.
func NewTraitCache(l ledger.AssetLedger, expiry time.Duration, purgeInterval time.Duration) *TraitCache {
	return &TraitCache{
		AssetLedger: l,
		traits:      gocache.New(expiry, purgeInterval),
	}
}

func key(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// RegisterAsset registers through the wrapped ledger. The ledger assigns the
// sex, so traits are cached on the first read.
func (c *TraitCache) RegisterAsset(owner string, genotype uint8, bloodline horse.Bloodline, contentHash string) (uint64, error) {
	id, err := c.AssetLedger.RegisterAsset(owner, genotype, bloodline, contentHash)
	if err != nil {
		return 0, err
	}

	c.traits.Delete(key(id))
	return id, nil
}

// GetAttributes reads the full record and refreshes the cached traits.
func (c *TraitCache) GetAttributes(id uint64) (horse.Attributes, error) {
	attrs, err := c.AssetLedger.GetAttributes(id)
	if err != nil {
		return horse.Attributes{}, err
	}

	if attrs.Exists() {
		c.traits.Set(key(id), attrs.Traits, gocache.DefaultExpiration)
	}
	return attrs, nil
}

// Traits returns the traits of a horse, from cache when possible.
func (c *TraitCache) Traits(id uint64) (horse.Traits, error) {
	if v, ok := c.traits.Get(key(id)); ok {
		return v.(horse.Traits), nil
	}

	attrs, err := c.GetAttributes(id)
	if err != nil {
		return horse.Traits{}, err
	}
	return attrs.Traits, nil
}

// Len returns the number of cached entries.
func (c *TraitCache) Len() int {
	return c.traits.ItemCount()
}
