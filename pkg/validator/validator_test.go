package validator_test

import (
	"strings"
	"testing"

	"github.com/MarawanEldeib/portfolio-website-sub000/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfHead  = []byte{0x25, 0x50, 0x44, 0x46, 0x2D, 0x31}
	docHead  = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1}
	docxHead = []byte{0x50, 0x4B, 0x03, 0x04, 0x14, 0x00}
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"jane@example.com",
		"first.last+tag@sub.domain.org",
		"a@b.co",
	}
	for _, email := range valid {
		assert.NoError(t, validator.ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"missing-at.example.com",
		"user@localhost",
		"user@",
		"@example.com",
		"has space@example.com",
		"user@exa mple.com",
	}
	for _, email := range invalid {
		err := validator.ValidateEmail(email)
		require.Error(t, err, email)
		assert.Equal(t, validator.CodeInvalidFormat, validator.CodeOf(err), email)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want validator.Code
	}{
		{"https document", "https://example.com/doc.pdf", ""},
		{"https subdomain", "https://www.linkedin.com/in/someone", ""},
		{"lookalike of shortener", "https://microsoft.com/", ""},
		{"http scheme", "http://example.com", validator.CodeInvalidScheme},
		{"ftp scheme", "ftp://example.com/file", validator.CodeInvalidScheme},
		{"javascript scheme", "javascript:alert(1)", validator.CodeInvalidScheme},
		{"no scheme", "example.com", validator.CodeInvalidScheme},
		{"bitly", "https://bit.ly/x", validator.CodeBlockedDomain},
		{"tinyurl subdomain", "https://preview.tinyurl.com/abc", validator.CodeBlockedDomain},
		{"shortener prefix label", "https://www.bit.ly/x", validator.CodeBlockedDomain},
		{"shortener embedded in host", "https://bit.ly.evil.com/x", validator.CodeBlockedDomain},
		{"shortener mid host", "https://go.t.co.example.org/", validator.CodeBlockedDomain},
		{"shortener as partial label", "https://notbit.ly/", ""},
		{"double dot", "https://example..com/", validator.CodeSuspiciousPattern},
		{"no dot", "https://localhost/", validator.CodeInvalidFormat},
		{"ipv4 literal", "https://1.2.3.4/", validator.CodeIPNotAllowed},
		{"ipv4 with port", "https://10.0.0.1:8443/admin", validator.CodeIPNotAllowed},
		{"dotted quad out of range", "https://999.1.1.1/", validator.CodeIPNotAllowed},
		{"three part number", "https://1.2.3/", ""},
		{"hex first octet", "https://0x7f.0.0.1/", ""},
		{"empty host", "https:///path", validator.CodeInvalidFormat},
		{"garbage", "://%%%", validator.CodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateURL(tt.url)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.want, validator.CodeOf(err))
		})
	}
}

func TestValidateFiles(t *testing.T) {
	ok := func(name string) validator.FileInput {
		return validator.FileInput{Name: name, Size: 1024, ContentType: validator.MimePDF, Head: pdfHead}
	}

	tests := []struct {
		name  string
		files []validator.FileInput
		want  validator.Code
	}{
		{"no files", nil, ""},
		{"one of each type", []validator.FileInput{
			ok("cv.pdf"),
			{Name: "old.doc", Size: 10, ContentType: validator.MimeDOC, Head: docHead},
			{Name: "new.docx", Size: 10, ContentType: validator.MimeDOCX, Head: docxHead},
		}, ""},
		{"exactly five", []validator.FileInput{ok("1"), ok("2"), ok("3"), ok("4"), ok("5")}, ""},
		{"six files", []validator.FileInput{ok("1"), ok("2"), ok("3"), ok("4"), ok("5"), ok("6")}, validator.CodeTooManyFiles},
		{"too large", []validator.FileInput{
			{Name: "big.pdf", Size: validator.MaxFileSize + 1, ContentType: validator.MimePDF, Head: pdfHead},
		}, validator.CodeFileTooLarge},
		{"exactly max size", []validator.FileInput{
			{Name: "max.pdf", Size: validator.MaxFileSize, ContentType: validator.MimePDF, Head: pdfHead},
		}, ""},
		{"image type", []validator.FileInput{
			{Name: "photo.png", Size: 10, ContentType: "image/png", Head: []byte{0x89, 0x50, 0x4E, 0x47}},
		}, validator.CodeUnsupportedType},
		{"pdf with wrong magic", []validator.FileInput{
			{Name: "fake.pdf", Size: 10, ContentType: validator.MimePDF, Head: []byte("MZ\x90\x00")},
		}, validator.CodeContentMismatch},
		{"docx declared but pdf content", []validator.FileInput{
			{Name: "x.docx", Size: 10, ContentType: validator.MimeDOCX, Head: pdfHead},
		}, validator.CodeContentMismatch},
		{"short content", []validator.FileInput{
			{Name: "tiny.pdf", Size: 2, ContentType: validator.MimePDF, Head: []byte{0x25, 0x50}},
		}, validator.CodeContentMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateFiles(tt.files)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.want, validator.CodeOf(err))
		})
	}
}

func TestValidateFiles_StopsAtFirstFailure(t *testing.T) {
	files := []validator.FileInput{
		{Name: "first.pdf", Size: 10, ContentType: validator.MimePDF, Head: []byte("nope")},
		{Name: "second.png", Size: 10, ContentType: "image/png"},
	}

	err := validator.ValidateFiles(files)
	require.Error(t, err)
	assert.Equal(t, validator.CodeContentMismatch, validator.CodeOf(err))
	assert.Contains(t, err.Error(), "first.pdf")
}

type contactForm struct {
	Name    string `form:"name" validate:"notblank,max=10"`
	Email   string `form:"email" validate:"required,simpleemail"`
	Message string `form:"message" validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	err := validator.ValidateStruct(contactForm{Name: "Jane", Email: "jane@example.com", Message: "hi"})
	assert.NoError(t, err)

	err = validator.ValidateStruct(contactForm{Name: "  ", Email: "jane@example.com", Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, validator.CodeRequired, validator.CodeOf(err))
	assert.Contains(t, err.Error(), "name")

	err = validator.ValidateStruct(contactForm{Name: strings.Repeat("x", 11), Email: "jane@example.com", Message: "hi"})
	assert.Equal(t, validator.CodeInvalidFormat, validator.CodeOf(err))

	err = validator.ValidateStruct(contactForm{Name: "Jane", Email: "nope", Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, validator.CodeInvalidFormat, validator.CodeOf(err))
	assert.Equal(t, "Invalid email format", err.(*validator.Error).Message)
}
