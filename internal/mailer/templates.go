package mailer

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// RenderContact renders the notification for a contact submission. All
// submitter input is HTML-escaped.
func RenderContact(sub *models.ContactSubmission) (string, error) {
	return render("contact.html", sub)
}

func RenderDigest(d *models.Digest) (string, error) {
	return render("digest.html", d)
}

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
