package eventfilter

import (
	"sort"
	"strconv"
	"strings"
)

// fingerprintInts renders a sorted, deduplicated int slice as a stable
// comma-joined key.
func fingerprintInts(vals []int) string {
	sort.Ints(vals)
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
