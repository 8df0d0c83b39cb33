package cache

import (
	"fmt"
	"time"
)

// Deterministic key builders for the recurring access patterns, so the
// same logical query produces the same key at every call site. The
// reserved prefix is applied on write; these return the semantic part.

// TodayQuoteKey returns the key for the quote shown on a given date,
// e.g. "today_quote_2024-01-15".
func TodayQuoteKey(date time.Time) string {
	return fmt.Sprintf("today_quote_%s", date.Format("2006-01-02"))
}

// ArchiveKey returns the key for one page of the quote archive, e.g.
// "archive_p2_l12_cat-motivation". The category part is omitted for
// unfiltered queries.
func ArchiveKey(page, limit int, category string) string {
	if category == "" {
		return fmt.Sprintf("archive_p%d_l%d", page, limit)
	}
	return fmt.Sprintf("archive_p%d_l%d_cat-%s", page, limit, category)
}

// QuoteCountKey returns the fixed key for the total quote count.
func QuoteCountKey() string {
	return "quote_count"
}
