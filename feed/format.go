package feed

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// maxDisplayURL is the longest URL printed in a run summary.
const maxDisplayURL = 80

// ComputeHash returns the xxhash of article content as 16 hex digits.
func ComputeHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// DisplayURL drops the scheme of rawURL and, when it is still too long for
// a summary line, cuts it from the left so the article path stays visible.
func DisplayURL(rawURL string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	r := []rune(s)
	if len(r) <= maxDisplayURL {
		return s
	}
	return "..." + string(r[len(r)-maxDisplayURL+3:])
}

// FormatBytes formats a document size: 512 B, 1.5 KB, 2.0 MB.
func FormatBytes(n int) string {
	if n < 1<<10 {
		return fmt.Sprintf("%d B", n)
	}
	size, unit := float64(n)/(1<<10), "KB"
	if n >= 1<<20 {
		size, unit = float64(n)/(1<<20), "MB"
	}
	return fmt.Sprintf("%.1f %s", size, unit)
}
