package kmer

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestNewLayout(t *testing.T) {
	v, err := New(3)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if v.Size() != 5+64 {
		t.Fatalf("Size() = %d, want 69", v.Size())
	}
	if got := v.Token(5); got != "AAA" {
		t.Fatalf("Token(5) = %q, want AAA", got)
	}
	if got := v.Token(int32(v.Size() - 1)); got != "TTT" {
		t.Fatalf("last token = %q, want TTT", got)
	}
	if id := v.ID("AAC"); id != 6 {
		t.Fatalf("ID(AAC) = %d, want 6", id)
	}
	if id, ok := v.MaskTokenID(); !ok || id != 4 {
		t.Fatalf("MaskTokenID() = %d, %v", id, ok)
	}
	if id, ok := v.PadTokenID(); !ok || id != 0 {
		t.Fatalf("PadTokenID() = %d, %v", id, ok)
	}
	if v.CLSTokenID() != 2 || v.SEPTokenID() != 3 || v.UnkTokenID() != 1 {
		t.Fatal("unexpected special ids")
	}
}

func TestNewRejectsK(t *testing.T) {
	for _, k := range []int{0, -1, 13} {
		if _, err := New(k); err == nil {
			t.Fatalf("New(%d) expected error", k)
		}
	}
}

func TestTokenize(t *testing.T) {
	v, err := New(3)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got := v.Tokenize("acgTN")
	want := []int32{v.ID("ACG"), v.ID("CGT"), v.UnkTokenID()}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
	again := v.Tokenize("ACGTN")
	again[0] = -1
	if third := v.Tokenize("ACGTN"); third[0] != want[0] {
		t.Fatal("cached tokens were mutated through a returned slice")
	}
	if got := v.Tokenize("AC"); len(got) != 0 {
		t.Fatalf("Tokenize(short) = %v, want empty", got)
	}
}

func TestEncodeDecode(t *testing.T) {
	v, err := New(6)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	seq := "ACGTACGTTTGCA"
	ids := v.EncodeWithSpecial(seq)
	if ids[0] != v.CLSTokenID() || ids[len(ids)-1] != v.SEPTokenID() {
		t.Fatalf("EncodeWithSpecial() = %v, missing cls/sep", ids)
	}
	if len(ids) != len(seq)-6+1+2 {
		t.Fatalf("len = %d", len(ids))
	}
	if got := v.Decode(ids); got != seq {
		t.Fatalf("Decode() = %q, want %q", got, seq)
	}
	mask := v.SpecialTokensMask(ids)
	if !mask[0] || !mask[len(mask)-1] || mask[1] {
		t.Fatalf("SpecialTokensMask() = %v", mask)
	}
}

func TestVocabRoundTrip(t *testing.T) {
	v, err := New(2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	var buf bytes.Buffer
	if err := v.WriteVocab(&buf); err != nil {
		t.Fatalf("WriteVocab() error = %v", err)
	}
	got, err := ReadVocab(&buf)
	if err != nil {
		t.Fatalf("ReadVocab() error = %v", err)
	}
	if got.K() != 2 || got.Size() != v.Size() {
		t.Fatalf("ReadVocab() k=%d size=%d", got.K(), got.Size())
	}
}

func TestReadVocabErrors(t *testing.T) {
	for _, body := range []string{
		"[PAD]\n[UNK]\n",
		"[PAD]\n[UNK]\n[CLS]\n[SEP]\nAA\nAAA\n",
		"[UNK]\n[CLS]\n[SEP]\nAA\nAA\n",
		"[PAD]\n[CLS]\n[SEP]\nAA\n",
	} {
		if _, err := ReadVocab(strings.NewReader(body)); err == nil {
			t.Fatalf("ReadVocab(%q) expected error", body)
		}
	}
}

func TestReadVocabWithoutMask(t *testing.T) {
	v, err := ReadVocab(strings.NewReader("[UNK]\n[CLS]\n[SEP]\nA\nC\n"))
	if err != nil {
		t.Fatalf("ReadVocab() error = %v", err)
	}
	if _, ok := v.MaskTokenID(); ok {
		t.Fatal("MaskTokenID() reported a mask token")
	}
}

func TestKmers(t *testing.T) {
	if got, want := Kmers("ACGTA", 3), []string{"ACG", "CGT", "GTA"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Kmers() = %v, want %v", got, want)
	}
	if got := Kmers("AC", 3); got != nil {
		t.Fatalf("Kmers(short) = %v", got)
	}
}

func TestTokenizeSkipsCacheForLongSequences(t *testing.T) {
	v, err := New(4)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	long := strings.Repeat("ACGT", MaxCachedLen/4+1)
	got := v.Tokenize(long)
	if len(got) != len(long)-3 {
		t.Fatalf("Tokenize(long) len = %d, want %d", len(got), len(long)-3)
	}
	if _, ok := v.cache.get(long); ok {
		t.Fatal("sequence longer than MaxCachedLen was cached")
	}
	short := strings.Repeat("ACGT", MaxCachedLen/4)
	v.Tokenize(short)
	if _, ok := v.cache.get(short); !ok {
		t.Fatal("sequence of MaxCachedLen bases was not cached")
	}
}
