package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/mailer"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/models"
	"github.com/sirupsen/logrus"
)

const DefaultTopN = 5

// ComposeDigest summarizes forDate. A missing day or a day with no visits is
// ErrNoVisits.
func ComposeDigest(store models.VisitsStore, forDate string, topN int) (*models.Digest, error) {
	record, ok := store[forDate]
	if !ok || record == nil || record.Count == 0 {
		return nil, ErrNoVisits
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	return &models.Digest{
		Date:         forDate,
		TotalVisits:  record.Count,
		TopPaths:     topEntries(record.Paths, topN),
		TopReferrers: topEntries(record.Referrers, topN),
	}, nil
}

// topEntries ranks by descending count; equal counts keep first-seen order.
func topEntries(t *models.Tally, n int) []models.RankedEntry {
	entries := []models.RankedEntry{}
	if t == nil {
		return entries
	}

	for pair := t.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, models.RankedEntry{Key: pair.Key, Count: pair.Value})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

type DigestService struct {
	visits *VisitService
	mailer mailer.Mailer
	from   string
	to     []string
	topN   int
}

func NewDigestService(visits *VisitService, m mailer.Mailer, from, to string, topN int) *DigestService {
	return &DigestService{
		visits: visits,
		mailer: m,
		from:   from,
		to:     splitRecipients(to),
		topN:   topN,
	}
}

// SendDailyDigest mails yesterday's summary. It returns the digest that was
// sent, ErrNoVisits when there was nothing to send, or an ErrDelivery.
func (s *DigestService) SendDailyDigest(ctx context.Context) (*models.Digest, error) {
	return s.SendDigest(ctx, s.ReportDate())
}

// ReportDate is the day a daily digest covers: yesterday, local time.
func (s *DigestService) ReportDate() string {
	return s.visits.Yesterday()
}

func (s *DigestService) SendDigest(ctx context.Context, date string) (*models.Digest, error) {
	digest, err := ComposeDigest(s.visits.GetAll(ctx), date, s.topN)
	if err != nil {
		return nil, err
	}

	html, err := mailer.RenderDigest(digest)
	if err != nil {
		return nil, fmt.Errorf("render digest: %w", err)
	}

	msg := &mailer.Message{
		From:    s.from,
		To:      s.to,
		Subject: fmt.Sprintf("Daily visits for %s: %d", digest.Date, digest.TotalVisits),
		HTML:    html,
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		logrus.WithError(err).WithField("date", date).Error("failed to send daily digest")
		return nil, fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	logrus.WithFields(logrus.Fields{
		"date":   digest.Date,
		"visits": digest.TotalVisits,
	}).Info("daily digest sent")

	return digest, nil
}

func splitRecipients(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
