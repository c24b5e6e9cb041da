package dnabert

import (
	"math/rand/v2"

	"github.com/pkg/errors"

	"dnabert-go/internal/chunk"
	"dnabert-go/internal/config"
	"dnabert-go/internal/kmer"
	"dnabert-go/internal/mlm"
)

type Options struct {
	Kmer           int
	ChunkWidth     int
	ChunkOverlap   int
	Padding        bool
	MLMProbability float64
	Seed           uint64
}

// OptionsFromConfig maps a training configuration onto pipeline options.
func OptionsFromConfig(cfg config.Train) Options {
	return Options{
		Kmer:           cfg.Kmer,
		ChunkWidth:     cfg.ChunkWidth,
		ChunkOverlap:   cfg.ChunkOverlap,
		Padding:        true,
		MLMProbability: cfg.MLMProbability,
		Seed:           uint64(cfg.Seed),
	}
}

type Chunks struct {
	TokenIDs  [][]int32
	LeftShift int
	result    chunk.Result
}

// Pipeline turns raw DNA into model-ready chunks and MLM batches.
// PrepareLong may be called concurrently; MaskBatch may not.
type Pipeline struct {
	vocab  *kmer.Vocab
	opts   Options
	masker *mlm.Masker
}

func New(opts Options) (*Pipeline, error) {
	vocab, err := kmer.New(opts.Kmer)
	if err != nil {
		return nil, err
	}
	return NewWithVocab(vocab, opts)
}

func NewWithVocab(vocab *kmer.Vocab, opts Options) (*Pipeline, error) {
	if opts.ChunkWidth < 3 {
		return nil, errors.Errorf("chunk width %d too small for [CLS] and [SEP]", opts.ChunkWidth)
	}
	masker, err := mlm.NewMasker(vocab, opts.MLMProbability, rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	if err != nil {
		return nil, err
	}
	return &Pipeline{vocab: vocab, opts: opts, masker: masker}, nil
}

func (p *Pipeline) Vocab() *kmer.Vocab { return p.vocab }

// PrepareLong tokenizes seq and splits it into [CLS] ... [SEP] windows of
// the configured width.
func (p *Pipeline) PrepareLong(seq string) (Chunks, error) {
	ids := p.vocab.Tokenize(seq)
	opts := []chunk.Option{chunk.WithCLS(p.vocab.CLSTokenID()), chunk.WithEOS(p.vocab.SEPTokenID())}
	if pad, ok := p.vocab.PadTokenID(); ok && p.opts.Padding {
		opts = append(opts, chunk.WithPadding(pad))
	}
	r, err := chunk.Split(ids, p.opts.ChunkWidth, p.opts.ChunkOverlap, opts...)
	if err != nil {
		return Chunks{}, errors.Wrapf(err, "chunk %d tokens", len(ids))
	}
	return Chunks{TokenIDs: r.Chunks, LeftShift: r.LeftShift, result: r}, nil
}

// Merge maps per-position model outputs for c back onto the token sequence.
func Merge[T any](c Chunks, outputs [][]T) ([]T, error) {
	return chunk.Reassemble(c.result, outputs)
}

// MaskBatch returns corrupted copies of batch and their labels. It advances
// the pipeline's random source and must not be called from more than one
// goroutine at a time.
func (p *Pipeline) MaskBatch(batch [][]int32) (inputs, labels [][]int32) {
	return p.masker.Mask(batch)
}
