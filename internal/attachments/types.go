// Package attachments decides how a stored binary reference is rendered and
// produces a usable local resource for it.
package attachments

import (
	"path/filepath"
	"strings"
)

// Category is the rendering category of an attachment.
type Category string

const (
	CategoryImage Category = "image"
	CategoryVideo Category = "video"
	CategoryPDF   Category = "pdf"
	// CategoryFile is the unknown/document fallback.
	CategoryFile Category = "file"
)

// genericMime is a declared type that carries no category information.
const genericMime = "application/octet-stream"

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".webm": {}, ".ogg": {}, ".mov": {}, ".avi": {}, ".mkv": {},
}

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".bmp": {}, ".svg": {},
}

// Categorize decides the rendering category: explicit MIME prefix first, then
// the exact PDF type, then a filename-extension fallback when the declared
// type is generic or absent.
func Categorize(mimeType, fileName string) Category {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return CategoryImage
	case strings.HasPrefix(mimeType, "video/"):
		return CategoryVideo
	case mimeType == "application/pdf":
		return CategoryPDF
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if mimeType == "" || mimeType == genericMime {
		if _, ok := imageExtensions[ext]; ok {
			return CategoryImage
		}
	}
	if _, ok := videoExtensions[ext]; ok {
		return CategoryVideo
	}
	if ext == ".pdf" {
		return CategoryPDF
	}
	return CategoryFile
}

var extensionMimes = map[string]string{
	// Images
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"bmp":  "image/bmp",
	"ico":  "image/x-icon",

	// Videos
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"ogg":  "video/ogg",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"mkv":  "video/x-matroska",

	// Documents
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"txt":  "text/plain",
	"csv":  "text/csv",

	// Archives
	"zip": "application/zip",
	"rar": "application/x-rar-compressed",
	"7z":  "application/x-7z-compressed",
	"tar": "application/x-tar",
	"gz":  "application/gzip",
}

// InferMimeType maps a filename extension to a MIME type, returning "" when
// the extension is unknown or absent.
func InferMimeType(fileName string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "" {
		return ""
	}
	return extensionMimes[ext]
}

// EnsureMimeType returns the declared type unless it is missing or generic,
// in which case it falls back to the filename extension, then to the generic
// type.
func EnsureMimeType(mimeType, fileName string) string {
	if mimeType != "" && mimeType != genericMime {
		return mimeType
	}
	if inferred := InferMimeType(fileName); inferred != "" {
		return inferred
	}
	return genericMime
}

// SniffMimeType inspects file signature bytes and returns the detected image
// MIME type, or "" when the signature is not recognized.
func SniffMimeType(data []byte) string {
	if len(data) >= 4 && data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	if len(data) >= 3 && data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 {
		return "image/gif"
	}
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	if len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	return ""
}
