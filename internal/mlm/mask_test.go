package mlm

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"sync"
	"testing"
)

// fakeVocab treats ids 0..4 as special tokens, 0 being padding and 4 the mask.
type fakeVocab struct {
	noMask bool
	size   int
}

func (v fakeVocab) MaskTokenID() (int32, bool) { return 4, !v.noMask }
func (v fakeVocab) PadTokenID() (int32, bool)  { return 0, true }
func (v fakeVocab) Size() int                  { return v.size }
func (v fakeVocab) SpecialTokensMask(ids []int32) []bool {
	out := make([]bool, len(ids))
	for i, id := range ids {
		out[i] = id >= 1 && id <= 4
	}
	return out
}

// row builds [CLS] body... [SEP] [PAD]*pad with body ids starting at 10.
func row(body, pad int) []int32 {
	r := []int32{2}
	for i := 0; i < body; i++ {
		r = append(r, int32(10+i))
	}
	r = append(r, 3)
	for i := 0; i < pad; i++ {
		r = append(r, 0)
	}
	return r
}

func TestNewMaskerErrors(t *testing.T) {
	src := rand.NewPCG(1, 1)
	if _, err := NewMasker(fakeVocab{noMask: true, size: 100}, 0.15, src); !errors.Is(err, ErrNoMaskToken) {
		t.Fatalf("err = %v, want ErrNoMaskToken", err)
	}
	for _, p := range []float64{-0.1, 1.1} {
		if _, err := NewMasker(fakeVocab{size: 100}, p, src); err == nil {
			t.Fatalf("NewMasker(p=%v) expected error", p)
		}
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		centers []int
		end     int
		want    []int
	}{
		{[]int{5}, 10, []int{3, 4, 5, 6, 7, 8}},
		{[]int{1}, 3, []int{1, 2, 3}},
		{[]int{2, 9}, 9, []int{1, 2, 3, 4, 5, 7, 8, 9}},
	}
	for _, tt := range tests {
		masked := make([]bool, 12)
		expand(masked, tt.centers, tt.end)
		var got []int
		for i, m := range masked {
			if m {
				got = append(got, i)
			}
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("expand(%v, %d) = %v, want %v", tt.centers, tt.end, got, tt.want)
		}
	}
}

func TestMaskZeroProbability(t *testing.T) {
	m, err := NewMasker(fakeVocab{size: 100}, 0, rand.NewPCG(3, 4))
	if err != nil {
		t.Fatalf("NewMasker() error = %v", err)
	}
	batch := [][]int32{row(20, 3), row(5, 0)}
	inputs, labels := m.Mask(batch)
	if !reflect.DeepEqual(inputs, batch) {
		t.Fatalf("inputs changed: %v", inputs)
	}
	for r, lab := range labels {
		for i, v := range lab {
			if v != IgnoreIndex {
				t.Fatalf("labels[%d][%d] = %d, want IgnoreIndex", r, i, v)
			}
		}
	}
}

func TestMaskFullProbabilityRespectsSpecials(t *testing.T) {
	m, err := NewMasker(fakeVocab{size: 100}, 1, rand.NewPCG(5, 6))
	if err != nil {
		t.Fatalf("NewMasker() error = %v", err)
	}
	orig := row(12, 4)
	_, labels := m.Mask([][]int32{orig})
	for i, v := range labels[0] {
		maskable := orig[i] >= 10
		if maskable && v != orig[i] {
			t.Fatalf("labels[%d] = %d, want %d", i, v, orig[i])
		}
		if !maskable && v != IgnoreIndex {
			t.Fatalf("special position %d labeled %d", i, v)
		}
	}
}

func TestMaskLabelsComeFromNeighbourhoods(t *testing.T) {
	m, err := NewMasker(fakeVocab{size: 100}, 0.05, rand.NewPCG(7, 8))
	if err != nil {
		t.Fatalf("NewMasker() error = %v", err)
	}
	batch := [][]int32{row(200, 10), row(50, 0), row(1, 5)}
	orig := make([][]int32, len(batch))
	for i := range batch {
		orig[i] = append([]int32(nil), batch[i]...)
	}
	inputs, labels := m.Mask(batch)
	if !reflect.DeepEqual(batch, orig) {
		t.Fatal("Mask() modified its argument")
	}
	for r, positions := range Masked(labels) {
		end := len(orig[r]) - 1
		for end >= 0 && orig[r][end] < 10 {
			end--
		}
		for _, i := range positions {
			if i < 1 || i > end {
				t.Fatalf("row %d: masked position %d outside [1, %d]", r, i, end)
			}
			if labels[r][i] != orig[r][i] {
				t.Fatalf("row %d: label[%d] = %d, want %d", r, i, labels[r][i], orig[r][i])
			}
		}
		for i := range orig[r] {
			if labels[r][i] == IgnoreIndex && inputs[r][i] != orig[r][i] {
				t.Fatalf("row %d: unmasked position %d was corrupted", r, i)
			}
		}
	}
}

func TestMaskInPlaceCorruptionSplit(t *testing.T) {
	m, err := NewMasker(fakeVocab{size: 1 << 20}, 1, rand.NewPCG(9, 10))
	if err != nil {
		t.Fatalf("NewMasker() error = %v", err)
	}
	batch := [][]int32{row(20000, 0)}
	orig := append([]int32(nil), batch[0]...)
	labels := m.MaskInPlace(batch)

	var masked, replaced, kept int
	for i, v := range labels[0] {
		if v == IgnoreIndex {
			continue
		}
		masked++
		switch batch[0][i] {
		case 4:
			replaced++
		case orig[i]:
			kept++
		}
	}
	if masked != 20000 {
		t.Fatalf("masked = %d, want 20000", masked)
	}
	if f := float64(replaced) / float64(masked); f < 0.77 || f > 0.83 {
		t.Fatalf("mask-token share = %.3f, want about 0.8", f)
	}
	if f := float64(kept) / float64(masked); f < 0.08 || f > 0.12 {
		t.Fatalf("unchanged share = %.3f, want about 0.1", f)
	}
}

func TestMaskerPerGoroutine(t *testing.T) {
	batch := [][]int32{row(300, 4), row(80, 0)}
	results := make([][][]int32, 4)
	var wg sync.WaitGroup
	for i := range results {
		m, err := NewMasker(fakeVocab{size: 100}, 0.15, rand.NewPCG(11, 12))
		if err != nil {
			t.Fatalf("NewMasker() error = %v", err)
		}
		wg.Add(1)
		go func(i int, m *Masker) {
			defer wg.Done()
			_, results[i] = m.Mask(batch)
		}(i, m)
	}
	wg.Wait()
	for i := 1; i < len(results); i++ {
		if !reflect.DeepEqual(results[i], results[0]) {
			t.Fatalf("masker %d labels differ from masker 0 with the same seed", i)
		}
	}
}
