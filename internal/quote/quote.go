// Package quote provides the cached read side of the quote archive. It
// wraps a caller-supplied backend client with the layered cache so that
// page loads do not hit the hosted backend on every request.
package quote

import "time"

// Quote is one entry in the daily quote archive.
type Quote struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Category    string    `json:"category"`
	AudioURL    string    `json:"audioUrl,omitempty"`
	DisplayDate string    `json:"displayDate"` // YYYY-MM-DD
	CreatedAt   time.Time `json:"createdAt"`
}

// Page is one page of archive results.
type Page struct {
	Quotes []Quote `json:"quotes"`
	Total  int     `json:"total"`
}
