package dataset

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Record is one FASTA entry.
type Record struct {
	Header   string
	Sequence string
}

// ReadFASTA parses FASTA records. Sequence lines are concatenated and
// upper-cased; blank lines and ';' comments are skipped.
func ReadFASTA(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	var (
		out []Record
		cur *Record
		sb  strings.Builder
	)
	flush := func() {
		if cur != nil {
			cur.Sequence = sb.String()
			out = append(out, *cur)
		}
		sb.Reset()
	}
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		switch {
		case text == "" || strings.HasPrefix(text, ";"):
			continue
		case strings.HasPrefix(text, ">"):
			flush()
			cur = &Record{Header: strings.TrimSpace(text[1:])}
		default:
			if cur == nil {
				return nil, errors.Errorf("line %d: sequence data before first header", line)
			}
			sb.WriteString(strings.ToUpper(text))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read fasta")
	}
	flush()
	return out, nil
}

// Records is an in-memory dataset over FASTA records. Each worker works on
// its own Clone, narrowed with InitWorker.
type Records struct {
	items []Record
	start int
	end   int
}

func NewRecords(items []Record) *Records {
	return &Records{items: items, end: len(items)}
}

func (r *Records) Bounds() (int, int) { return r.start, r.end }

func (r *Records) SetBounds(start, end int) {
	r.start = max(0, min(start, len(r.items)))
	r.end = max(r.start, min(end, len(r.items)))
}

func (r *Records) Len() int { return r.end - r.start }

// Clone shares the records but not the bounds.
func (r *Records) Clone() *Records {
	c := *r
	return &c
}

// Each calls fn with the global index of every record inside the bounds.
func (r *Records) Each(fn func(idx int, rec Record) error) error {
	for i := r.start; i < r.end; i++ {
		if err := fn(i, r.items[i]); err != nil {
			return err
		}
	}
	return nil
}
