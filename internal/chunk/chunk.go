// Package chunk splits token sequences that are longer than a model context
// into overlapping fixed-width windows and maps per-window outputs back onto
// the original sequence.
package chunk

import (
	"github.com/pkg/errors"
)

var (
	// ErrDegenerate is returned when width and overlap leave no room for content.
	ErrDegenerate = errors.New("degenerate chunk configuration")
	// ErrReconstruction means the chunks do not reassemble into the input.
	ErrReconstruction = errors.New("chunks do not reconstruct input")
)

type options struct {
	cls, eos, pad          int32
	hasCLS, hasEOS, padded bool
}

type Option func(*options)

// WithCLS prepends id to every chunk.
func WithCLS(id int32) Option {
	return func(o *options) { o.cls, o.hasCLS = id, true }
}

// WithEOS appends id to every chunk.
func WithEOS(id int32) Option {
	return func(o *options) { o.eos, o.hasEOS = id, true }
}

// WithPadding right-pads every chunk with id up to the full width.
func WithPadding(id int32) Option {
	return func(o *options) { o.pad, o.padded = id, true }
}

type Result struct {
	Chunks [][]int32
	// LeftShift is how many tokens of the previous chunk were prepended to
	// the final chunk. Zero when there is a single chunk.
	LeftShift int
	// ChunkLen is the content width of a chunk, without cls/eos.
	ChunkLen int
	// Overlap is the overlap actually used, after clamping to ChunkLen-1.
	Overlap int
	// Lengths holds the content length of each chunk, excluding cls, eos and padding.
	Lengths []int
	HasCLS  bool
	HasEOS  bool
}

// Split cuts seq into chunks of width tokens (cls and eos included) that
// overlap by overlap tokens. seq must not contain special tokens. The last
// chunk is filled on the left with tokens taken from the chunk before it so
// that it is as long as the others whenever the sequence allows.
func Split(seq []int32, width, overlap int, opts ...Option) (Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	chunkLen := width
	if o.hasCLS {
		chunkLen--
	}
	if o.hasEOS {
		chunkLen--
	}
	if chunkLen < 1 {
		return Result{}, errors.Wrapf(ErrDegenerate, "width %d leaves %d content tokens", width, chunkLen)
	}
	if overlap < 0 {
		return Result{}, errors.Wrapf(ErrDegenerate, "negative overlap %d", overlap)
	}
	if overlap > chunkLen-1 {
		overlap = chunkLen - 1
	}
	stride := chunkLen - overlap

	limit := len(seq) - overlap
	if limit < 1 {
		limit = 1
	}
	var chunks [][]int32
	for start := 0; start < limit; start += stride {
		end := start + chunkLen
		if end > len(seq) {
			end = len(seq)
		}
		chunks = append(chunks, seq[start:end])
	}

	leftShift := 0
	if n := len(chunks); n > 1 {
		last, prev := chunks[n-1], chunks[n-2]
		leftShift = min(chunkLen-len(last), len(prev)-overlap)
		if leftShift > 0 {
			cut := len(prev) - overlap
			joined := make([]int32, 0, leftShift+len(last))
			joined = append(joined, prev[cut-leftShift:cut]...)
			joined = append(joined, last...)
			chunks[n-1] = joined
		} else {
			leftShift = 0
		}
	}

	res := Result{
		LeftShift: leftShift,
		ChunkLen:  chunkLen,
		Overlap:   overlap,
		Lengths:   make([]int, len(chunks)),
		HasCLS:    o.hasCLS,
		HasEOS:    o.hasEOS,
	}
	for i, c := range chunks {
		res.Lengths[i] = len(c)
	}
	if err := verify(res, chunks, seq); err != nil {
		return Result{}, err
	}

	res.Chunks = make([][]int32, len(chunks))
	for i, c := range chunks {
		size := len(c)
		if o.hasCLS {
			size++
		}
		if o.hasEOS {
			size++
		}
		if o.padded && size < width {
			size = width
		}
		out := make([]int32, 0, size)
		if o.hasCLS {
			out = append(out, o.cls)
		}
		out = append(out, c...)
		if o.hasEOS {
			out = append(out, o.eos)
		}
		for o.padded && len(out) < width {
			out = append(out, o.pad)
		}
		res.Chunks[i] = out
	}
	return res, nil
}

// verify checks that the content chunks, before special tokens are added,
// reassemble into seq.
func verify(r Result, content [][]int32, seq []int32) error {
	bare := r
	bare.HasCLS, bare.HasEOS = false, false
	got, err := Reassemble(bare, content)
	if err != nil {
		return err
	}
	if len(got) != len(seq) {
		return errors.Wrapf(ErrReconstruction, "reassembled %d tokens from %d", len(got), len(seq))
	}
	for i := range seq {
		if got[i] != seq[i] {
			return errors.Wrapf(ErrReconstruction, "token %d = %d, want %d", i, got[i], seq[i])
		}
	}
	return nil
}

// Reassemble stitches per-position outputs of every chunk back into one
// sequence aligned with the input given to Split. outputs[i] must cover at
// least the content of r.Chunks[i], including its cls slot when present.
// The overlap tail of each non-final chunk and the LeftShift head of the
// final chunk are dropped, so every input position appears exactly once.
func Reassemble[T any](r Result, outputs [][]T) ([]T, error) {
	if len(outputs) != len(r.Lengths) {
		return nil, errors.Errorf("got outputs for %d chunks, want %d", len(outputs), len(r.Lengths))
	}
	offset := 0
	if r.HasCLS {
		offset = 1
	}
	total := 0
	for _, n := range r.Lengths {
		total += n
	}
	out := make([]T, 0, total)
	last := len(outputs) - 1
	for i, o := range outputs {
		n := r.Lengths[i]
		if len(o) < offset+n {
			return nil, errors.Errorf("chunk %d has %d outputs, want at least %d", i, len(o), offset+n)
		}
		body := o[offset : offset+n]
		if i < last {
			keep := n - r.Overlap
			if keep < 0 {
				keep = 0
			}
			out = append(out, body[:keep]...)
			continue
		}
		if r.LeftShift > len(body) {
			return nil, errors.Errorf("left shift %d exceeds final chunk length %d", r.LeftShift, len(body))
		}
		out = append(out, body[r.LeftShift:]...)
	}
	return out, nil
}
