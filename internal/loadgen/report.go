package loadgen

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
)

type Report struct {
	Target    string
	Sent      int
	Succeeded int
	Failed    int
	// StatusCodes counts responses by HTTP status. Transport errors are not included.
	StatusCodes map[int]int
	// Values holds the counter values returned, ascending.
	Values     []int64
	Duplicates []int64
	// Contiguous is true when Values is non-empty and covers a gapless range without repeats.
	Contiguous bool
	MaxLatency time.Duration
	Elapsed    time.Duration
}

func newReport(target string, hits []Hit, elapsed time.Duration) *Report {
	r := &Report{
		Target:      target,
		Sent:        len(hits),
		StatusCodes: map[int]int{},
		Elapsed:     elapsed,
	}

	for _, h := range hits {
		if h.Latency > r.MaxLatency {
			r.MaxLatency = h.Latency
		}
		if h.Err != nil {
			r.Failed++
			continue
		}
		r.StatusCodes[h.Status]++
		if h.Status >= 200 && h.Status < 300 {
			r.Succeeded++
		} else {
			r.Failed++
		}
	}

	r.Values = lo.FilterMap(hits, func(h Hit, _ int) (int64, bool) {
		return h.Value, h.HasValue
	})
	sort.Slice(r.Values, func(i, j int) bool { return r.Values[i] < r.Values[j] })
	r.Duplicates = lo.FindDuplicates(r.Values)
	r.Contiguous = len(r.Values) > 0 && len(r.Duplicates) == 0 &&
		lo.Max(r.Values)-lo.Min(r.Values) == int64(len(r.Values)-1)

	return r
}

// Serialized reports whether every request succeeded and the returned values
// form one contiguous range.
func (r *Report) Serialized() bool {
	return r.Failed == 0 && r.Contiguous && len(r.Values) == r.Sent
}

func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "sent=%s ok=%s failed=%s",
		humanize.Comma(int64(r.Sent)), humanize.Comma(int64(r.Succeeded)), humanize.Comma(int64(r.Failed)))
	if len(r.Values) > 0 {
		fmt.Fprintf(&sb, " values=%d..%d contiguous=%t", lo.Min(r.Values), lo.Max(r.Values), r.Contiguous)
	}
	if len(r.Duplicates) > 0 {
		fmt.Fprintf(&sb, " duplicates=%v", r.Duplicates)
	}
	fmt.Fprintf(&sb, " maxLatency=%s elapsed=%s", r.MaxLatency.Round(time.Microsecond), r.Elapsed.Round(time.Microsecond))
	return sb.String()
}
