package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"dnabert-go/internal/checkpoint"
	"dnabert-go/internal/config"
	"dnabert-go/internal/logging"
)

func main() {
	var (
		dir     = flag.String("dir", "", "checkpoint output directory")
		keep    = flag.String("keep", "", "comma separated epochs or ranges to retain, e.g. 1,10:50:10")
		current = flag.Int("current", -1, "epoch to keep in addition to --keep (default: latest)")
		prune   = flag.Bool("prune", false, "delete checkpoints not retained")
	)
	flag.Parse()
	logger := logging.New(os.Stdout)

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "missing required --dir")
		flag.Usage()
		os.Exit(2)
	}

	entries, err := checkpoint.List(*dir)
	if err != nil {
		log.Fatalf("list checkpoints: %v", err)
	}
	var total int64
	for _, e := range entries {
		total += e.Size
		fmt.Printf("%-12s %10s  %s\n", checkpoint.DirName(e.Epoch), humanize.Bytes(uint64(e.Size)), e.Dir)
	}
	fmt.Printf("%d checkpoints, %s\n", len(entries), humanize.Bytes(uint64(total)))

	if !*prune {
		return
	}
	var saveAt []int
	if *keep != "" {
		saveAt, err = config.ParseRangeList(strings.Split(*keep, ","))
		if err != nil {
			log.Fatalf("parse --keep: %v", err)
		}
	}
	keepEpoch := *current
	if keepEpoch < 0 {
		latest, ok, err := checkpoint.Latest(*dir)
		if err != nil {
			log.Fatalf("latest checkpoint: %v", err)
		}
		if !ok {
			return
		}
		keepEpoch = latest.Epoch
	}
	removed, err := checkpoint.Prune(*dir, keepEpoch, saveAt)
	for _, r := range removed {
		logger.Printf("removed %s", r)
	}
	if err != nil {
		log.Fatalf("prune: %v", err)
	}
}
