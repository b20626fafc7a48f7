package api

import "time"

// Page is a downloaded or loaded article page.
type Page struct {
	URL       string
	Host      string
	Title     string
	HTML      []byte
	FetchedAt time.Time
}
