// Package utils holds tiny helpers shared across layers that carry no
// domain knowledge of their own.
package utils

import "strconv"

// AtoiDefault parses s as a base-10 integer and falls back to def when
// s is empty or not a valid integer. Used for query parameters such as
// page and page_size where a missing or garbled value should degrade
// to a sane default rather than fail the request.
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
