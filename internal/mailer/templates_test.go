package mailer

import (
	"testing"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderContact_EscapesInput(t *testing.T) {
	html, err := RenderContact(&models.ContactSubmission{
		Name:    "<script>alert(1)</script>",
		Email:   "jane@example.com",
		Message: "Hello & welcome",
		URL:     "https://example.com/portfolio",
		Attachments: []models.Attachment{
			{Filename: "cv.pdf", Size: 42},
		},
	})
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "Hello &amp; welcome")
	assert.Contains(t, html, "https://example.com/portfolio")
	assert.Contains(t, html, "cv.pdf (42 bytes)")
}

func TestRenderDigest(t *testing.T) {
	html, err := RenderDigest(&models.Digest{
		Date:        "2024-01-01",
		TotalVisits: 9,
		TopPaths: []models.RankedEntry{
			{Key: "/a", Count: 5},
			{Key: "/b", Count: 4},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Daily visits for 2024-01-01")
	assert.Contains(t, html, "/a")
	assert.Contains(t, html, "All visits were direct.")
}
