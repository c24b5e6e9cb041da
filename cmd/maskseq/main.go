package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"dnabert-go/internal/config"
	"dnabert-go/internal/dataset"
	"dnabert-go/internal/logging"
	"dnabert-go/internal/metrics"
	"dnabert-go/internal/mlm"
	"dnabert-go/pkg/dnabert"
)

type maskLine struct {
	Header   string    `json:"header"`
	InputIDs [][]int32 `json:"input_ids"`
	Labels   [][]int32 `json:"labels"`
}

func main() {
	var (
		inPath  = flag.String("in", "", "Path to FASTA input")
		k       = flag.Int("k", config.DefaultKmer, "k-mer size")
		width   = flag.Int("width", config.DefaultChunkWidth, "chunk width including [CLS] and [SEP]")
		overlap = flag.Int("overlap", 0, "overlap between consecutive chunks, in tokens")
		prob    = flag.Float64("prob", config.DefaultMLMProbability, "probability of sampling a masking centre")
		seed    = flag.Uint64("seed", 1, "random seed")
		beta    = flag.Float64("beta", metrics.DefaultBeta, "smoothing factor for the reported masked share")
	)
	flag.Parse()
	logger := logging.New(os.Stderr)

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "missing required --in")
		flag.Usage()
		os.Exit(2)
	}
	pipe, err := dnabert.New(dnabert.Options{
		Kmer:           *k,
		ChunkWidth:     *width,
		ChunkOverlap:   *overlap,
		Padding:        true,
		MLMProbability: *prob,
		Seed:           *seed,
	})
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

	share := metrics.NewEMA(*beta)
	enc := json.NewEncoder(os.Stdout)
	for _, rec := range recs {
		c, err := pipe.PrepareLong(rec.Sequence)
		if err != nil {
			log.Fatalf("record %q: %v", rec.Header, err)
		}
		inputs, labels := pipe.MaskBatch(c.TokenIDs)
		masked, total := 0, 0
		for r, pos := range mlm.Masked(labels) {
			masked += len(pos)
			total += len(labels[r])
		}
		if total > 0 {
			logger.Printf("%s: %d/%d masked, smoothed share %.4f", rec.Header, masked, total, share.Update(float64(masked)/float64(total)))
		}
		if err := enc.Encode(maskLine{Header: rec.Header, InputIDs: inputs, Labels: labels}); err != nil {
			log.Fatalf("encode: %v", err)
		}
	}
}
