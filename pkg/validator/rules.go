package validator

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

)

const (
	MaxFiles    = 5
	MaxFileSize = 10 << 20 // 10MB

	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	dottedQuad   = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)
)

// Known link shorteners; a shortened link hides where it points.
var blockedDomains = map[string]bool{
	"bit.ly":      true,
	"tinyurl.com": true,
	"goo.gl":      true,
	"t.co":        true,
	"ow.ly":       true,
	"is.gd":       true,
	"buff.ly":     true,
	"adf.ly":      true,
	"bl.ink":      true,
	"lnkd.in":     true,
	"shorturl.at": true,
	"rb.gy":       true,
	"cutt.ly":     true,
	"tiny.cc":     true,
}

var magicBytes = map[string][]byte{
	MimePDF:  {0x25, 0x50, 0x44, 0x46}, // %PDF
	MimeDOC:  {0xD0, 0xCF, 0x11, 0xE0}, // OLE2 compound file
	MimeDOCX: {0x50, 0x4B, 0x03, 0x04}, // ZIP
}

// FileInput is the metadata needed to vet one upload. Head holds at least the
// leading bytes of the content; the whole content is fine too.
type FileInput struct {
	Name        string
	Size        int64
	ContentType string
	Head        []byte
}

func ValidateEmail(s string) error {
	if !emailPattern.MatchString(s) {
		return newError(CodeInvalidFormat, "email", "Invalid email format")
	}
	return nil
}

// ValidateURL accepts only https links to ordinary named hosts.
func ValidateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return newError(CodeInvalidFormat, "url", "Invalid URL format")
	}

	if u.Scheme != "https" {
		return newError(CodeInvalidScheme, "url", "Only HTTPS URLs are allowed")
	}

	hostname := strings.ToLower(u.Hostname())
	if hostname == "" {
		return newError(CodeInvalidFormat, "url", "Invalid URL format")
	}

	if isBlockedDomain(hostname) {
		return newError(CodeBlockedDomain, "url", "URL shorteners are not allowed")
	}

	if strings.Contains(hostname, "..") || strings.Contains(hostname, "@") {
		return newError(CodeSuspiciousPattern, "url", "URL contains suspicious patterns")
	}

	if !strings.Contains(hostname, ".") {
		return newError(CodeInvalidFormat, "url", "Invalid domain format")
	}

	if dottedQuad.MatchString(hostname) {
		return newError(CodeIPNotAllowed, "url", "IP addresses are not allowed")
	}

	return nil
}

// ValidateFiles checks count first, then each file in order, stopping at the
// first failure.
func ValidateFiles(files []FileInput) error {
	if len(files) > MaxFiles {
		return newError(CodeTooManyFiles, "files", fmt.Sprintf("Maximum %d files allowed", MaxFiles))
	}

	for _, f := range files {
		if err := validateFile(f); err != nil {
			return err
		}
	}
	return nil
}

func validateFile(f FileInput) error {
	if f.Size > MaxFileSize {
		return newError(CodeFileTooLarge, "files",
			fmt.Sprintf("File %s exceeds %dMB limit", f.Name, MaxFileSize>>20))
	}

	want, ok := magicBytes[f.ContentType]
	if !ok {
		return newError(CodeUnsupportedType, "files",
			fmt.Sprintf("File %s has invalid type. Only PDF, DOC, DOCX allowed", f.Name))
	}

	if !bytes.HasPrefix(f.Head, want) {
		return newError(CodeContentMismatch, "files",
			fmt.Sprintf("File %s content does not match its declared type", f.Name))
	}

	return nil
}

// isBlockedDomain reports whether any run of consecutive labels in hostname
// is a denylisted domain: bit.ly, www.bit.ly and bit.ly.evil.com all match,
// microsoft.com does not match t.co.
func isBlockedDomain(hostname string) bool {
	labels := strings.Split(strings.TrimSuffix(hostname, "."), ".")
	for i := range labels {
		for j := i + 1; j <= len(labels); j++ {
			if blockedDomains[strings.Join(labels[i:j], ".")] {
				return true
			}
		}
	}
	return false
}
