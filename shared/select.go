package shared

import (
	"sort"
	"strconv"
	"strings"
)

// ParseSelection expands a course selection expression into 0-based indexes.
// Supported forms: "5", "2-6", "1,3,5", "1,3-6,8". Reversed ranges are
// corrected, out-of-range entries dropped, duplicates collapsed.
func ParseSelection(input string, max int) []int {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	seen := map[int]bool{}

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if n, err := strconv.Atoi(part); err == nil {
			if idx := n - 1; idx >= 0 && idx < max {
				seen[idx] = true
			}
			continue
		}

		lo, hi, ok := strings.Cut(part, "-")
		if !ok {
			continue
		}
		start, err1 := strconv.Atoi(strings.TrimSpace(lo))
		end, err2 := strconv.Atoi(strings.TrimSpace(hi))
		if err1 != nil || err2 != nil {
			continue
		}
		if start > end {
			start, end = end, start
		}
		for i := start - 1; i <= end-1; i++ {
			if i >= 0 && i < max {
				seen[i] = true
			}
		}
	}

	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
