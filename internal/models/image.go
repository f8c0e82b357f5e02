package models

// Image is an image extracted from a decomposed document
type Image struct {
	DocumentID  string
	Filename    string
	ContentType string
	Data        []byte
}
