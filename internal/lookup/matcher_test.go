package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monito/internal"
)

func stored(id int, name string, price float64, supplier string) internal.StoredProduct {
	return internal.StoredProduct{ID: id, Name: name, Price: &price, Supplier: &supplier}
}

func sampleProducts() []internal.StoredProduct {
	return []internal.StoredProduct{
		stored(1, "Beras Premium", 13500, "Sumber Pangan"),
		stored(2, "Beras Premium", 13000, "Tani Makmur"),
		stored(3, "Beras Merah", 18000, "Tani Makmur"),
		stored(4, "Gula Pasir", 16000, "Sumber Pangan"),
	}
}

func TestBuildIndex(t *testing.T) {
	idx := BuildIndex(sampleProducts())
	assert.Equal(t, 4, idx.Len())
	assert.Len(t, idx.ByKey["beras premium"], 2)
	assert.Len(t, idx.TokenToIDs["beras"], 3)
	assert.Equal(t, "gula pasir", idx.KeyByID[4])
}

func TestSearchExactCheapestFirst(t *testing.T) {
	m := NewMatcher(sampleProducts(), 0.45)

	got := m.Search("BERAS  premium", 0)
	require.Len(t, got, 3)
	assert.True(t, got[0].Exact)
	assert.Equal(t, 2, got[0].Product.ID)
	assert.Equal(t, 1, got[1].Product.ID)
	assert.Equal(t, 3, got[2].Product.ID)
	assert.Less(t, got[2].Score, 1.0)
	assert.GreaterOrEqual(t, got[2].Score, 0.45)
}

func TestSearchLimit(t *testing.T) {
	m := NewMatcher(sampleProducts(), 0.45)
	got := m.Search("beras premium", 2)
	require.Len(t, got, 2)
	assert.True(t, got[0].Exact && got[1].Exact)
}

func TestSearchMisspelled(t *testing.T) {
	m := NewMatcher(sampleProducts(), 0.45)
	got := m.Search("berass premum", 5)
	require.Len(t, got, 2)
	for _, hit := range got {
		assert.False(t, hit.Exact)
		assert.Equal(t, "Beras Premium", hit.Product.Name)
	}
	assert.Equal(t, 13000.0, *got[0].Product.Price)
}

func TestSearchDropsWeakMatches(t *testing.T) {
	m := NewMatcher(sampleProducts(), 0.9)
	got := m.Search("beras", 0)
	assert.Empty(t, got)

	assert.Nil(t, m.Search("   ", 5))
	assert.Nil(t, NewMatcher(nil, 0).Search("beras", 5))
}
