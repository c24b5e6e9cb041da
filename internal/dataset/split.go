// Package dataset narrows index-range datasets to a per-worker block and
// runs workers over their blocks.
package dataset

import (
	"github.com/pkg/errors"
)

var ErrWorker = errors.New("invalid worker info")

// RangeDataset exposes a mutable half-open index range [start, end).
type RangeDataset interface {
	Bounds() (start, end int)
	SetBounds(start, end int)
}

type WorkerInfo struct {
	ID         int
	NumWorkers int
	Dataset    RangeDataset
}

type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

// Split partitions [start, end) into n contiguous blocks of
// ceil((end-start)/n) indices. The last non-empty block is clamped to end;
// blocks that start past end are empty ranges at end.
func Split(start, end, n int) ([]Range, error) {
	if n < 1 {
		return nil, errors.Wrapf(ErrWorker, "%d workers", n)
	}
	if end < start {
		return nil, errors.Errorf("range end %d before start %d", end, start)
	}
	per := (end - start + n - 1) / n
	out := make([]Range, n)
	for id := range out {
		s := min(start+id*per, end)
		out[id] = Range{Start: s, End: min(s+per, end)}
	}
	return out, nil
}

// InitWorker narrows info.Dataset to the block belonging to info.ID. It is
// meant to run once in each worker, on that worker's own dataset copy.
func InitWorker(info WorkerInfo) error {
	if info.Dataset == nil {
		return errors.Wrap(ErrWorker, "nil dataset")
	}
	if info.ID < 0 || info.ID >= info.NumWorkers {
		return errors.Wrapf(ErrWorker, "worker id %d of %d", info.ID, info.NumWorkers)
	}
	start, end := info.Dataset.Bounds()
	blocks, err := Split(start, end, info.NumWorkers)
	if err != nil {
		return err
	}
	b := blocks[info.ID]
	info.Dataset.SetBounds(b.Start, b.End)
	return nil
}
