package models

// RankedEntry is one row of a digest's top-N table.
type RankedEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Digest summarizes one day of visits.
type Digest struct {
	Date         string        `json:"date"`
	TotalVisits  int           `json:"total_visits"`
	TopPaths     []RankedEntry `json:"top_paths"`
	TopReferrers []RankedEntry `json:"top_referrers"`
}
