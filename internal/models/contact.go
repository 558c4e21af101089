package models

import "mime/multipart"

// ContactForm is the multipart body of POST /contact.
type ContactForm struct {
	Name    string                  `form:"name"`
	Email   string                  `form:"email"`
	Message string                  `form:"message"`
	URL     string                  `form:"url"`
	Files   []*multipart.FileHeader `form:"files"`
}

// ContactSubmission is one submission handed to the contact service. It is
// never persisted.
type ContactSubmission struct {
	Name        string       `json:"name" validate:"notblank,max=200"`
	Email       string       `json:"email" validate:"notblank,max=320"`
	Message     string       `json:"message" validate:"notblank,max=10000"`
	URL         string       `json:"url" validate:"max=2048"`
	Attachments []Attachment `json:"-" validate:"-"`
}

// Attachment is an uploaded file held in memory for the length of a request.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}
