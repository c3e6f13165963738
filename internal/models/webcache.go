package models

import "time"

// CachedResponse is a stored HTTP response in one of the offline gateway's
// cache partitions.
type CachedResponse struct {
	Partition   string
	URL         string
	Status      int
	ContentType string
	Headers     map[string]string
	Body        []byte
	FetchedAt   time.Time
}
