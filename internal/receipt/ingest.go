package receipt

import (
	"path/filepath"
	"strings"
)

// DefaultMaxUploadBytes is the authoritative server-side upload ceiling.
// Clients may pre-check a stricter limit, but this one is enforced
// regardless of any client-declared metadata.
const DefaultMaxUploadBytes = 20 << 20 // 20 MiB

// Upload is one inbound receipt image payload
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// uploadExtensions maps recognized file extensions to their media types.
// PDFs are accepted alongside images; the scanning layer renders them to PNG
// before the model call.
var uploadExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".heic": "image/heic",
	".heif": "image/heif",
	".pdf":  "application/pdf",
}

// validateUpload checks the payload, its declared type and its size, and
// returns the effective media type the rest of the pipeline should use.
// All rejections are KindInvalidInput and happen before any external call.
func validateUpload(u Upload, maxBytes int64) (string, error) {
	if len(u.Data) == 0 {
		return "", newError(KindInvalidInput, "No image provided")
	}

	if int64(len(u.Data)) > maxBytes {
		return "", newError(KindInvalidInput, "File size must be less than 20MB")
	}

	declared := strings.ToLower(strings.TrimSpace(u.ContentType))
	ext := strings.ToLower(filepath.Ext(u.Filename))
	extType, extOK := uploadExtensions[ext]

	valid := strings.HasPrefix(declared, "image/") ||
		declared == "application/pdf" ||
		extOK
	if !valid {
		return "", newError(KindInvalidInput, "File must be an image (JPG, PNG, GIF, HEIC) or PDF")
	}

	// Default to a generic image type when nothing was declared
	effective := declared
	if effective == "" {
		effective = extType
	}
	if effective == "" {
		effective = "image/jpeg"
	}

	return effective, nil
}
