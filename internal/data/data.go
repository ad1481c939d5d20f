// Package data cuts a token stream into (features, targets) training
// windows and groups them into batches.
//
// A window of length T starting at s has features ids[s:s+T] and targets
// ids[s+1:s+T+1]: every position is trained to predict the next token.
// Windows do not overlap.
package data

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
)

// ErrCorpusTooShort is returned when a token stream holds no full window.
var ErrCorpusTooShort = errors.New("data: corpus too short")

// Batch is a group of windows as (batch, time) rows.
type Batch struct {
	Features [][]int32
	Targets  [][]int32
}

// Size returns the number of rows.
func (b Batch) Size() int {
	return len(b.Features)
}

// Dataset is the list of windows of a token stream.
type Dataset struct {
	ids        []int32
	timeLength int
	starts     []int
}

// NewDataset cuts ids into windows of timeLength. The tail that does not fill
// a window is dropped.
func NewDataset(ids []int32, timeLength int) (*Dataset, error) {
	if timeLength < 1 {
		return nil, fmt.Errorf("data: time length must be >= 1, got %d", timeLength)
	}
	var starts []int
	for s := 0; s+timeLength+1 <= len(ids); s += timeLength {
		starts = append(starts, s)
	}
	if len(starts) == 0 {
		return nil, fmt.Errorf("%w: %d tokens, need at least %d", ErrCorpusTooShort, len(ids), timeLength+1)
	}
	return &Dataset{ids: ids, timeLength: timeLength, starts: starts}, nil
}

// NumWindows returns the number of windows.
func (d *Dataset) NumWindows() int {
	return len(d.starts)
}

// TimeLength returns the window length.
func (d *Dataset) TimeLength() int {
	return d.timeLength
}

// Window returns the features and targets of window i. The slices alias the
// token stream.
func (d *Dataset) Window(i int) (features, targets []int32) {
	s := d.starts[i]
	return d.ids[s : s+d.timeLength], d.ids[s+1 : s+d.timeLength+1]
}

// Split moves the last validFraction of the windows into a second dataset.
// valid is nil when the fraction rounds to no window; train always keeps at
// least one window.
func (d *Dataset) Split(validFraction float64) (train, valid *Dataset) {
	n := int(float64(len(d.starts)) * validFraction)
	n = min(n, len(d.starts)-1)
	if n <= 0 {
		return d, nil
	}
	cut := len(d.starts) - n
	train = &Dataset{ids: d.ids, timeLength: d.timeLength, starts: d.starts[:cut]}
	valid = &Dataset{ids: d.ids, timeLength: d.timeLength, starts: d.starts[cut:]}
	return train, valid
}

// Batches iterates over the windows in groups of batchSize. A nil src keeps
// corpus order; otherwise the order is shuffled on every pass.
func (d *Dataset) Batches(batchSize int, src rand.Source) *Iterator {
	it := &Iterator{ds: d, batchSize: max(batchSize, 1)}
	if src != nil {
		it.rng = rand.New(src)
	}
	it.Reset()
	return it
}

// Iterator yields batches of a Dataset.
type Iterator struct {
	ds        *Dataset
	batchSize int
	rng       *rand.Rand
	order     []int
	pos       int
	epoch     int
}

// Next returns the next batch, or false at the end of a pass. The last batch
// of a pass may be smaller than the batch size.
func (it *Iterator) Next() (Batch, bool) {
	if it.pos >= len(it.order) {
		return Batch{}, false
	}
	end := min(it.pos+it.batchSize, len(it.order))
	batch := Batch{
		Features: make([][]int32, 0, end-it.pos),
		Targets:  make([][]int32, 0, end-it.pos),
	}
	for _, w := range it.order[it.pos:end] {
		f, t := it.ds.Window(w)
		batch.Features = append(batch.Features, f)
		batch.Targets = append(batch.Targets, t)
	}
	it.pos = end
	return batch, true
}

// Reset starts a new pass, reshuffling when the iterator has a source.
func (it *Iterator) Reset() {
	if it.order == nil {
		it.order = make([]int, it.ds.NumWindows())
	} else {
		it.epoch++
	}
	for i := range it.order {
		it.order[i] = i
	}
	if it.rng != nil {
		it.rng.Shuffle(len(it.order), func(i, j int) {
			it.order[i], it.order[j] = it.order[j], it.order[i]
		})
	}
	it.pos = 0
}

// Epoch returns the number of completed Reset calls after the first pass
// started.
func (it *Iterator) Epoch() int {
	return it.epoch
}
