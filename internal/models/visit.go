package models

import (
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DirectReferrer marks a visit that arrived without a referrer.
const DirectReferrer = "direct"

const DateLayout = "2006-01-02"

// Tally counts keys in first-seen order.
type Tally = orderedmap.OrderedMap[string, int]

func NewTally() *Tally {
	return orderedmap.New[string, int]()
}

// VisitRecord aggregates one calendar day of page views.
type VisitRecord struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	Paths     *Tally `json:"paths"`
	Referrers *Tally `json:"referrers"`
}

func NewVisitRecord(date string) *VisitRecord {
	return &VisitRecord{
		Date:      date,
		Paths:     NewTally(),
		Referrers: NewTally(),
	}
}

// Add counts one page view. Direct and empty referrers are not tallied.
func (r *VisitRecord) Add(path, referrer string) {
	if r.Paths == nil {
		r.Paths = NewTally()
	}
	if r.Referrers == nil {
		r.Referrers = NewTally()
	}

	r.Count++
	increment(r.Paths, path)
	if CountsReferrer(referrer) {
		increment(r.Referrers, referrer)
	}
}

func CountsReferrer(referrer string) bool {
	return referrer != "" && referrer != DirectReferrer
}

func increment(t *Tally, key string) {
	n, _ := t.Get(key)
	t.Set(key, n+1)
}

// VisitsStore maps ISO dates to their aggregated record.
type VisitsStore map[string]*VisitRecord

// TrackVisitRequest is the body of POST /track-visit.
type TrackVisitRequest struct {
	Pathname string `json:"pathname" validate:"notblank,max=512"`
	Referrer string `json:"referrer" validate:"max=2048"`
}

// Rows backing the gorm visit store.

type VisitDay struct {
	Date      string `gorm:"primaryKey;size:10"`
	Total     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type VisitPath struct {
	ID   uint   `gorm:"primaryKey"`
	Date string `gorm:"size:10;not null;uniqueIndex:idx_visit_path"`
	Path string `gorm:"size:512;not null;uniqueIndex:idx_visit_path"`
	Hits int    `gorm:"not null;default:0"`
}

type VisitReferrer struct {
	ID       uint   `gorm:"primaryKey"`
	Date     string `gorm:"size:10;not null;uniqueIndex:idx_visit_referrer"`
	Referrer string `gorm:"size:2048;not null;uniqueIndex:idx_visit_referrer"`
	Hits     int    `gorm:"not null;default:0"`
}
