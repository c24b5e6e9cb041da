package kmer

import "strings"

// Tokenize turns seq into overlapping k-mer ids, one per start position.
// Lower-case bases are accepted; k-mers containing other letters map to
// [UNK]. Sequences shorter than k produce no tokens. Only sequences up to
// MaxCachedLen bases are cached.
func (v *Vocab) Tokenize(seq string) []int32 {
	seq = strings.ToUpper(strings.TrimSpace(seq))
	if len(seq) > MaxCachedLen {
		return v.encode(seq)
	}
	v.mu.Lock()
	if cached, ok := v.cache.get(seq); ok {
		out := cloneInt32(cached)
		v.mu.Unlock()
		return out
	}
	v.mu.Unlock()

	out := v.encode(seq)
	v.mu.Lock()
	v.cache.add(seq, out)
	v.mu.Unlock()
	return out
}

func (v *Vocab) encode(seq string) []int32 {
	n := len(seq) - v.k + 1
	if n < 1 {
		return []int32{}
	}
	out := make([]int32, n)
	for i := 0; i < n; i++ {
		out[i] = v.ID(seq[i : i+v.k])
	}
	return out
}

// EncodeWithSpecial wraps Tokenize output in [CLS] ... [SEP].
func (v *Vocab) EncodeWithSpecial(seq string) []int32 {
	ids := v.Tokenize(seq)
	out := make([]int32, 0, len(ids)+2)
	out = append(out, v.cls)
	out = append(out, ids...)
	return append(out, v.sep)
}

// Decode joins k-mer tokens back into bases. Special tokens are skipped;
// each k-mer after the first contributes its last base, so an unbroken run
// of tokens yields the original sequence.
func (v *Vocab) Decode(ids []int32) string {
	var sb strings.Builder
	first := true
	for _, id := range ids {
		if v.special[id] {
			continue
		}
		tok := v.Token(id)
		if first {
			sb.WriteString(tok)
			first = false
			continue
		}
		sb.WriteByte(tok[len(tok)-1])
	}
	return sb.String()
}

// Kmers splits seq into its overlapping k-mer strings without looking them up.
func Kmers(seq string, k int) []string {
	if k < 1 || len(seq) < k {
		return nil
	}
	out := make([]string, 0, len(seq)-k+1)
	for i := 0; i+k <= len(seq); i++ {
		out = append(out, seq[i:i+k])
	}
	return out
}
