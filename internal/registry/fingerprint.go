package registry

import (
	"sort"
	"strconv"
	"strings"
)

func fingerprintProtocols(vals []int) string {
	sort.Ints(vals)
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
