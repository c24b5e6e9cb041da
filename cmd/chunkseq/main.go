package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"

	"dnabert-go/internal/config"
	"dnabert-go/internal/dataset"
	"dnabert-go/internal/logging"
	"dnabert-go/pkg/dnabert"
)

type chunkLine struct {
	Header    string    `json:"header"`
	Tokens    int       `json:"tokens"`
	Chunks    [][]int32 `json:"chunks"`
	LeftShift int       `json:"left_shift"`
}

func main() {
	var (
		inPath     = flag.String("in", "", "Path to FASTA input")
		configPath = flag.String("config", "", "Training config JSON (optional)")
		k          = flag.Int("k", config.DefaultKmer, "k-mer size")
		width      = flag.Int("width", config.DefaultChunkWidth, "chunk width including [CLS] and [SEP]")
		overlap    = flag.Int("overlap", 0, "overlap between consecutive chunks, in tokens")
		pad        = flag.Bool("pad", false, "right-pad chunks with [PAD] to the full width")
		workers    = flag.Int("workers", 1, "number of worker goroutines")
	)
	flag.Parse()
	logger := logging.New(os.Stderr)

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "missing required --in")
		flag.Usage()
		os.Exit(2)
	}

	opts := dnabert.Options{Kmer: *k, ChunkWidth: *width, ChunkOverlap: *overlap, Padding: *pad}
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		opts = dnabert.OptionsFromConfig(cfg)
		opts.Padding = *pad
		*workers = cfg.NumWorkers
	}
	pipe, err := dnabert.New(opts)
	if err != nil {
		log.Fatalf("init pipeline: %v", err)
	}

	f, err := os.Open(*inPath)
	if err != nil {
		log.Fatalf("open %s: %v", *inPath, err)
	}
	recs, err := dataset.ReadFASTA(f)
	f.Close()
	if err != nil {
		log.Fatalf("read %s: %v", *inPath, err)
	}
	logger.Printf("chunking %d records with %d workers", len(recs), *workers)

	out := make([]chunkLine, len(recs))
	err = dataset.Run(context.Background(), dataset.NewRecords(recs), *workers, func(ctx context.Context, _ int, part *dataset.Records) error {
		return part.Each(func(idx int, rec dataset.Record) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			line, err := chunkRecord(pipe, rec)
			if err != nil {
				return err
			}
			out[idx] = line
			return nil
		})
	})
	if err != nil {
		log.Fatalf("chunk: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	for _, line := range out {
		if err := enc.Encode(line); err != nil {
			log.Fatalf("encode: %v", err)
		}
	}
}

func chunkRecord(pipe *dnabert.Pipeline, rec dataset.Record) (chunkLine, error) {
	c, err := pipe.PrepareLong(rec.Sequence)
	if err != nil {
		return chunkLine{}, errors.Wrapf(err, "record %q", rec.Header)
	}
	n := len(rec.Sequence) - pipe.Vocab().K() + 1
	return chunkLine{Header: rec.Header, Tokens: max(n, 0), Chunks: c.TokenIDs, LeftShift: c.LeftShift}, nil
}
