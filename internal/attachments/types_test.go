package attachments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		fileName string
		want     Category
	}{
		{"declared image", "image/png", "photo.png", CategoryImage},
		{"declared video", "video/mp4", "clip.mp4", CategoryVideo},
		{"declared pdf", "application/pdf", "resume.pdf", CategoryPDF},
		{"generic type with video extension", "application/octet-stream", "clip.mov", CategoryVideo},
		{"generic type with image extension", "application/octet-stream", "photo.jpg", CategoryImage},
		{"generic type with pdf extension", "application/octet-stream", "resume.pdf", CategoryPDF},
		{"missing type with extension", "", "highlight.webm", CategoryVideo},
		{"generic type no extension", "application/octet-stream", "notes", CategoryFile},
		{"unknown everything", "application/x-whatever", "data.bin", CategoryFile},
		{"declared type beats extension", "image/png", "clip.mov", CategoryImage},
		{"uppercase extension", "", "PHOTO.JPG", CategoryImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.mimeType, tt.fileName))
		})
	}
}

func TestInferMimeType(t *testing.T) {
	assert.Equal(t, "image/jpeg", InferMimeType("photo.jpg"))
	assert.Equal(t, "video/quicktime", InferMimeType("clip.MOV"))
	assert.Equal(t, "application/pdf", InferMimeType("resume.pdf"))
	assert.Equal(t, "", InferMimeType("notes"))
	assert.Equal(t, "", InferMimeType("weird.xyz"))
}

func TestEnsureMimeType(t *testing.T) {
	assert.Equal(t, "image/png", EnsureMimeType("image/png", "whatever.mov"))
	assert.Equal(t, "video/quicktime", EnsureMimeType("application/octet-stream", "clip.mov"))
	assert.Equal(t, "text/plain", EnsureMimeType("", "readme.txt"))
	assert.Equal(t, "application/octet-stream", EnsureMimeType("", "notes"))
}

func TestSniffMimeType(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	gif := []byte("GIF89a")
	webp := []byte{'R', 'I', 'F', 'F', 0, 0, 0, 0, 'W', 'E', 'B', 'P'}

	assert.Equal(t, "image/png", SniffMimeType(png))
	assert.Equal(t, "image/jpeg", SniffMimeType(jpeg))
	assert.Equal(t, "image/gif", SniffMimeType(gif))
	assert.Equal(t, "image/webp", SniffMimeType(webp))
	assert.Equal(t, "", SniffMimeType([]byte("plain text")))
	assert.Equal(t, "", SniffMimeType(nil))
}
