// Package mlm builds masked-language-model inputs and labels for k-mer
// tokenized DNA. Masking a token also masks its neighbours, because adjacent
// overlapping k-mers would otherwise reveal the hidden bases.
package mlm

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// IgnoreIndex marks label positions that do not contribute to the loss.
	IgnoreIndex int32 = -100

	DefaultProbability = 0.15

	replaceProbability = 0.8
	randomProbability  = 0.5
)

// NeighbourOffsets are the positions, relative to a sampled centre, that are
// masked with it. They cover every 6-mer sharing a base with the centre's
// hidden context.
var NeighbourOffsets = []int{-2, -1, 1, 2, 3}

var ErrNoMaskToken = errors.New("vocabulary has no mask token, which masked language modeling requires")

// Vocabulary is the part of a tokenizer the masker needs.
type Vocabulary interface {
	MaskTokenID() (int32, bool)
	PadTokenID() (int32, bool)
	SpecialTokensMask(ids []int32) []bool
	Size() int
}

// Masker draws every random decision from a single source. It is not safe
// for concurrent use; give each goroutine its own Masker.
type Masker struct {
	vocab   Vocabulary
	maskID  int32
	padID   int32
	hasPad  bool
	size    int
	rng     *rand.Rand
	pick    distuv.Bernoulli
	replace distuv.Bernoulli
	random  distuv.Bernoulli
}

// NewMasker validates the vocabulary and probability. src drives every
// random draw, so equal seeds give equal batches.
func NewMasker(vocab Vocabulary, probability float64, src rand.Source) (*Masker, error) {
	maskID, ok := vocab.MaskTokenID()
	if !ok {
		return nil, ErrNoMaskToken
	}
	if !(probability >= 0 && probability <= 1) {
		return nil, errors.Errorf("mlm probability %v outside [0, 1]", probability)
	}
	if vocab.Size() < 1 {
		return nil, errors.New("empty vocabulary")
	}
	padID, hasPad := vocab.PadTokenID()
	return &Masker{
		vocab:   vocab,
		maskID:  maskID,
		padID:   padID,
		hasPad:  hasPad,
		size:    vocab.Size(),
		rng:     rand.New(src),
		pick:    distuv.Bernoulli{P: probability, Src: src},
		replace: distuv.Bernoulli{P: replaceProbability, Src: src},
		random:  distuv.Bernoulli{P: randomProbability, Src: src},
	}, nil
}

// Mask returns corrupted copies of batch and the matching labels. batch is
// not modified.
func (m *Masker) Mask(batch [][]int32) (inputs, labels [][]int32) {
	inputs = make([][]int32, len(batch))
	for i, row := range batch {
		inputs[i] = append([]int32(nil), row...)
	}
	return inputs, m.MaskInPlace(inputs)
}

// MaskInPlace corrupts batch in place and returns the labels: the original
// token at every masked position and IgnoreIndex elsewhere. Of the masked
// positions, 80% become the mask token, 10% a random vocabulary id and 10%
// keep their token.
func (m *Masker) MaskInPlace(batch [][]int32) [][]int32 {
	labels := make([][]int32, len(batch))
	for r, row := range batch {
		masked := m.selectRow(row)
		lab := make([]int32, len(row))
		for i, id := range row {
			if masked[i] {
				lab[i] = id
			} else {
				lab[i] = IgnoreIndex
			}
		}
		labels[r] = lab
		for i := range row {
			if !masked[i] {
				continue
			}
			switch {
			case m.replace.Rand() == 1:
				row[i] = m.maskID
			case m.random.Rand() == 1:
				row[i] = int32(m.rng.IntN(m.size))
			}
		}
	}
	return labels
}

// selectRow samples centres among maskable positions and widens them with
// NeighbourOffsets.
func (m *Masker) selectRow(row []int32) []bool {
	special := m.vocab.SpecialTokensMask(row)
	masked := make([]bool, len(row))
	var centers []int
	end := -1
	for i, id := range row {
		if i < len(special) && special[i] {
			continue
		}
		if m.hasPad && id == m.padID {
			continue
		}
		end = i
		if m.pick.Rand() == 1 {
			centers = append(centers, i)
		}
	}
	expand(masked, centers, end)
	return masked
}

// expand marks every centre and its neighbours that fall inside [1, end].
func expand(masked []bool, centers []int, end int) {
	for _, c := range centers {
		masked[c] = true
		for _, off := range NeighbourOffsets {
			j := c + off
			if j >= 1 && j <= end {
				masked[j] = true
			}
		}
	}
}

// Masked lists, per row, the positions whose label is not IgnoreIndex.
func Masked(labels [][]int32) [][]int {
	out := make([][]int, len(labels))
	for r, row := range labels {
		for i, v := range row {
			if v != IgnoreIndex {
				out[r] = append(out[r], i)
			}
		}
	}
	return out
}
