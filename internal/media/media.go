package media

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEPDF  = "application/pdf"
)

// inconclusive is what sniffing reports for bytes it cannot identify.
const inconclusive = "application/octet-stream"

// ErrUnsupported is returned for anything other than JPEG, PNG or PDF.
var ErrUnsupported = errors.New("unsupported media type")

var extensions = map[string]string{
	MIMEJPEG: "jpg",
	MIMEPNG:  "png",
	MIMEPDF:  "pdf",
}

// Info describes an accepted upload.
type Info struct {
	MIMEType  string
	Extension string
	Pages     int
}

// Detect sniffs data and falls back to the declared MIME type only when the
// content alone is inconclusive. A recognised non-image type is rejected
// whatever was declared.
func Detect(data []byte, declared string) (Info, error) {
	detected := mimetype.Detect(data)
	mimeType := normalize(detected.String())
	if detected.Is(inconclusive) {
		mimeType = normalize(declared)
	}

	ext, ok := extensions[mimeType]
	if !ok {
		return Info{}, ErrUnsupported
	}

	info := Info{MIMEType: mimeType, Extension: ext}
	if mimeType == MIMEPDF {
		info.Pages = CountPDFPages(data)
	}

	return info, nil
}

// HintFromKey picks the MIME type sent to the extraction model from the
// storage key's extension.
func HintFromKey(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".pdf":
		return MIMEPDF
	case ".png":
		return MIMEPNG
	default:
		return MIMEJPEG
	}
}

func normalize(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType == "image/jpg" || mediaType == "image/pjpeg" {
		return MIMEJPEG
	}
	return mediaType
}
