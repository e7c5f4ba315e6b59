package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studbook/horse"
)

func TestMemoryRegisterAsset(t *testing.T) {
	l := NewMemory()

	for i, hash := range []string{"genesis male hash", "female horse", "male horse"} {
		id, err := l.RegisterAsset("owner", 1, horse.Nakamoto, hash)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), id)
	}

	attrs, err := l.GetAttributes(1)
	require.NoError(t, err)
	assert.Equal(t, "owner", attrs.Owner)
	assert.Equal(t, "female horse", attrs.ContentHash)
	assert.Equal(t, horse.Female, attrs.Sex)

	attrs, _ = l.GetAttributes(2)
	assert.Equal(t, horse.Male, attrs.Sex)
	assert.Equal(t, 3, l.Count())
}

func TestMemoryUnknownHorseReadsAsZero(t *testing.T) {
	l := NewMemory()

	attrs, err := l.GetAttributes(7)
	require.NoError(t, err)
	assert.False(t, attrs.Exists())
	assert.Equal(t, horse.Unknown, attrs.Sex)

	genotype, err := GetGenotype(l, 7)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), genotype)

	bloodline, err := GetBloodline(l, 7)
	require.NoError(t, err)
	assert.Equal(t, horse.Bloodline(""), bloodline)
}

func TestMemoryTransfer(t *testing.T) {
	l := NewMemory()
	id, _ := l.RegisterAsset("alice", 3, horse.Szabo, "h")

	assert.True(t, l.Transfer(id, "bob"))
	assert.False(t, l.Transfer(id+1, "bob"))

	attrs, _ := l.GetAttributes(id)
	assert.Equal(t, "bob", attrs.Owner)

	genotype, _ := GetGenotype(l, id)
	bloodline, _ := GetBloodline(l, id)
	assert.Equal(t, uint8(3), genotype)
	assert.Equal(t, horse.Szabo, bloodline)
}
