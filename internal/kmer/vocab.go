// Package kmer implements the overlapping k-mer vocabulary used for DNA
// sequences: every position of a sequence becomes the token of the k bases
// starting there.
package kmer

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const (
	PadToken  = "[PAD]"
	UnkToken  = "[UNK]"
	CLSToken  = "[CLS]"
	SEPToken  = "[SEP]"
	MaskToken = "[MASK]"
)

const bases = "ACGT"

// DefaultCacheSize is the number of encoded sequences kept by a Vocab.
const DefaultCacheSize = 256

// MaxCachedLen is the longest sequence, in bases, that Tokenize caches.
const MaxCachedLen = 4096

type Vocab struct {
	k       int
	tokens  []string
	ids     map[string]int32
	special map[int32]bool
	pad     int32
	unk     int32
	cls     int32
	sep     int32
	mask    int32
	hasPad  bool
	hasMask bool

	mu    sync.Mutex
	cache *seqCache
}

// New builds the standard vocabulary for k: the five special tokens followed
// by every k-mer over ACGT in lexicographic order.
func New(k int) (*Vocab, error) {
	if k < 1 || k > 12 {
		return nil, errors.Errorf("k-mer size %d outside [1, 12]", k)
	}
	tokens := []string{PadToken, UnkToken, CLSToken, SEPToken, MaskToken}
	n := 1
	for i := 0; i < k; i++ {
		n *= len(bases)
	}
	buf := make([]byte, k)
	for i := 0; i < n; i++ {
		x := i
		for j := k - 1; j >= 0; j-- {
			buf[j] = bases[x%len(bases)]
			x /= len(bases)
		}
		tokens = append(tokens, string(buf))
	}
	return fromTokens(k, tokens)
}

// LoadVocab reads a vocabulary file with one token per line. The k-mer size
// is taken from the first non-special token.
func LoadVocab(path string) (*Vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open vocab %s", path)
	}
	defer f.Close()
	v, err := ReadVocab(f)
	if err != nil {
		return nil, errors.Wrapf(err, "vocab %s", path)
	}
	return v, nil
}

func ReadVocab(r io.Reader) (*Vocab, error) {
	var tokens []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		tok := strings.TrimSpace(sc.Text())
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan vocab")
	}
	k := 0
	for _, tok := range tokens {
		if !isSpecial(tok) {
			k = len(tok)
			break
		}
	}
	if k == 0 {
		return nil, errors.New("vocab has no k-mer tokens")
	}
	return fromTokens(k, tokens)
}

// WriteVocab writes the tokens one per line, in id order.
func (v *Vocab) WriteVocab(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, tok := range v.tokens {
		if _, err := bw.WriteString(tok + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func isSpecial(tok string) bool {
	return strings.HasPrefix(tok, "[") && strings.HasSuffix(tok, "]")
}

func fromTokens(k int, tokens []string) (*Vocab, error) {
	v := &Vocab{
		k:       k,
		tokens:  tokens,
		ids:     make(map[string]int32, len(tokens)),
		special: make(map[int32]bool),
		cache:   newSeqCache(DefaultCacheSize),
	}
	for i, tok := range tokens {
		id := int32(i)
		if _, dup := v.ids[tok]; dup {
			return nil, errors.Errorf("duplicate token %q", tok)
		}
		v.ids[tok] = id
		if isSpecial(tok) {
			v.special[id] = true
			continue
		}
		if len(tok) != k {
			return nil, errors.Errorf("token %q has length %d, want %d", tok, len(tok), k)
		}
	}
	var ok bool
	if v.unk, ok = v.ids[UnkToken]; !ok {
		return nil, errors.New("vocab is missing " + UnkToken)
	}
	if v.cls, ok = v.ids[CLSToken]; !ok {
		return nil, errors.New("vocab is missing " + CLSToken)
	}
	if v.sep, ok = v.ids[SEPToken]; !ok {
		return nil, errors.New("vocab is missing " + SEPToken)
	}
	v.pad, v.hasPad = v.ids[PadToken]
	v.mask, v.hasMask = v.ids[MaskToken]
	return v, nil
}

func (v *Vocab) K() int { return v.k }

func (v *Vocab) Size() int { return len(v.tokens) }

func (v *Vocab) CLSTokenID() int32 { return v.cls }

func (v *Vocab) SEPTokenID() int32 { return v.sep }

func (v *Vocab) UnkTokenID() int32 { return v.unk }

func (v *Vocab) MaskTokenID() (int32, bool) { return v.mask, v.hasMask }

func (v *Vocab) PadTokenID() (int32, bool) { return v.pad, v.hasPad }

// ID returns the id of tok, or the unknown id.
func (v *Vocab) ID(tok string) int32 {
	if id, ok := v.ids[tok]; ok {
		return id
	}
	return v.unk
}

// Token returns the token for id, or [UNK] when id is out of range.
func (v *Vocab) Token(id int32) string {
	if id < 0 || int(id) >= len(v.tokens) {
		return UnkToken
	}
	return v.tokens[id]
}

// SpecialTokensMask marks the special-token positions of ids.
func (v *Vocab) SpecialTokensMask(ids []int32) []bool {
	out := make([]bool, len(ids))
	for i, id := range ids {
		out[i] = v.special[id]
	}
	return out
}
