package config

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrRangeSyntax = errors.New("invalid range token")

// MaxRangeLen bounds how many values a single range token may expand to.
const MaxRangeLen = 1 << 20

// ParseRangeList expands tokens such as "1", "3:5" and "10:14:2" into a flat
// list. Range ends are inclusive. Order is preserved and duplicates are kept.
func ParseRangeList(tokens []string) ([]int, error) {
	out := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if !strings.Contains(tok, ":") {
			n, err := strconv.Atoi(tok)
			if err != nil {
				return nil, errors.Wrapf(ErrRangeSyntax, "%q is not an integer", tok)
			}
			out = append(out, n)
			continue
		}
		parts := strings.Split(tok, ":")
		if len(parts) > 3 {
			return nil, errors.Wrapf(ErrRangeSyntax, "%q has %d fields", tok, len(parts))
		}
		bounds := make([]int, len(parts))
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return nil, errors.Wrapf(ErrRangeSyntax, "%q: bound %q is not an integer", tok, p)
			}
			bounds[i] = n
		}
		step := 1
		if len(bounds) == 3 {
			step = bounds[2]
		}
		if step == 0 {
			return nil, errors.Wrapf(ErrRangeSyntax, "%q: step must not be zero", tok)
		}
		lo, hi := bounds[0], bounds[1]
		n, err := rangeLen(lo, hi, step)
		if err != nil {
			return nil, errors.Wrapf(err, "%q", tok)
		}
		// Stepping n times keeps v inside [lo, hi]; only the unused final
		// increment can wrap.
		v := lo
		for i := uint64(0); i < n; i++ {
			out = append(out, v)
			v += step
		}
	}
	return out, nil
}

// rangeLen counts the values of lo, lo+step, ... up to hi inclusive. The
// distance is taken in uint64 so bounds near the int limits do not overflow.
func rangeLen(lo, hi, step int) (uint64, error) {
	var dist, stride uint64
	switch {
	case step > 0 && lo <= hi:
		dist, stride = uint64(hi)-uint64(lo), uint64(step)
	case step < 0 && lo >= hi:
		dist, stride = uint64(lo)-uint64(hi), -uint64(step)
	default:
		return 0, nil
	}
	if dist/stride >= MaxRangeLen {
		return 0, errors.Wrapf(ErrRangeSyntax, "expands to more than %d values", MaxRangeLen)
	}
	return dist/stride + 1, nil
}

// Str2Bool reports whether v spells a true value (yes, true, t or 1).
func Str2Bool(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "true", "t", "1":
		return true
	default:
		return false
	}
}
