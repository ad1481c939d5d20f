package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func seq(n int) []int32 {
	ids := make([]int32, n)
	for i := range ids {
		ids[i] = int32(i)
	}
	return ids
}

func TestDataset_Windows(t *testing.T) {
	ds, err := NewDataset(seq(10), 3)
	require.NoError(t, err)

	// Starts 0, 3, 6; a window at 9 would need token 12.
	require.Equal(t, 3, ds.NumWindows())
	f, tg := ds.Window(1)
	assert.Equal(t, []int32{3, 4, 5}, f)
	assert.Equal(t, []int32{4, 5, 6}, tg)

	f, tg = ds.Window(2)
	assert.Equal(t, []int32{6, 7, 8}, f)
	assert.Equal(t, []int32{7, 8, 9}, tg)
}

func TestDataset_TooShort(t *testing.T) {
	_, err := NewDataset(seq(3), 3)
	assert.ErrorIs(t, err, ErrCorpusTooShort)

	_, err = NewDataset(seq(10), 0)
	assert.Error(t, err)
}

func TestDataset_Split(t *testing.T) {
	ds, err := NewDataset(seq(41), 4)
	require.NoError(t, err)
	require.Equal(t, 10, ds.NumWindows())

	train, valid := ds.Split(0.2)
	require.NotNil(t, valid)
	assert.Equal(t, 8, train.NumWindows())
	assert.Equal(t, 2, valid.NumWindows())
	f, _ := valid.Window(0)
	assert.Equal(t, int32(32), f[0])

	train, valid = ds.Split(0)
	assert.Same(t, ds, train)
	assert.Nil(t, valid)

	train, valid = ds.Split(1)
	assert.Equal(t, 1, train.NumWindows())
	assert.Equal(t, 9, valid.NumWindows())
}

func TestIterator_InOrder(t *testing.T) {
	ds, err := NewDataset(seq(16), 3)
	require.NoError(t, err)
	it := ds.Batches(2, nil)

	var firsts []int32
	var sizes []int
	for batch, ok := it.Next(); ok; batch, ok = it.Next() {
		sizes = append(sizes, batch.Size())
		for _, row := range batch.Features {
			firsts = append(firsts, row[0])
		}
	}
	assert.Equal(t, []int{2, 2, 1}, sizes)
	assert.Equal(t, []int32{0, 3, 6, 9, 12}, firsts)

	it.Reset()
	assert.Equal(t, 1, it.Epoch())
	_, ok := it.Next()
	assert.True(t, ok)
}

func TestIterator_ShuffleIsSeeded(t *testing.T) {
	ds, err := NewDataset(seq(301), 3)
	require.NoError(t, err)

	order := func(seed uint64) []int32 {
		it := ds.Batches(100, rand.NewSource(seed))
		batch, ok := it.Next()
		require.True(t, ok)
		firsts := make([]int32, batch.Size())
		for i, row := range batch.Features {
			firsts[i] = row[0]
		}
		return firsts
	}

	a, b := order(1), order(1)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, order(2))

	// A shuffled pass still visits every window exactly once.
	it := ds.Batches(7, rand.NewSource(3))
	var all, want []int32
	for batch, ok := it.Next(); ok; batch, ok = it.Next() {
		for _, row := range batch.Features {
			all = append(all, row[0])
		}
	}
	for s := int32(0); s < 300; s += 3 {
		want = append(want, s)
	}
	assert.ElementsMatch(t, want, all)
}
