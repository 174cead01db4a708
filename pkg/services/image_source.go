package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/vincent-petithory/dataurl"
	_ "golang.org/x/image/webp"
)

// ImageSource is a decoded data-URI image ready for upload
type ImageSource struct {
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// IsDataURI reports whether src is an inline image rather than a remote URL
func IsDataURI(src string) bool {
	return strings.HasPrefix(src, "data:image")
}

// DecodeImageSource decodes a base64 image data-URI and checks that the bytes
// carry a readable image header.
func DecodeImageSource(src string) (*ImageSource, error) {
	if !IsDataURI(src) {
		return nil, ErrInvalidImageSource
	}

	du, err := dataurl.DecodeString(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImageSource, err)
	}
	if du.Type != "image" || du.Encoding != dataurl.EncodingBase64 {
		return nil, fmt.Errorf("%w: unexpected %s (%s)", ErrInvalidImageSource, du.ContentType(), du.Encoding)
	}
	if len(du.Data) == 0 {
		return nil, fmt.Errorf("%w: empty image data", ErrInvalidImageSource)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(du.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %v", ErrInvalidImageSource, err)
	}

	return &ImageSource{
		ContentType: du.ContentType(),
		Data:        du.Data,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// EncodeImageSource wraps raw file bytes as a base64 data-URI
func EncodeImageSource(contentType string, data []byte) string {
	return dataurl.New(data, contentType).String()
}

// SafeFileName strips a path down to a file name the document library accepts
func SafeFileName(path string) string {
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}

	baseName := filepath.Base(path)
	baseName = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*#%`, r) {
			return '_'
		}
		return r
	}, baseName)

	if len(baseName) > 200 {
		hash := sha256.Sum256([]byte(path))
		extension := filepath.Ext(baseName)
		prefix := []rune(baseName)
		if len(prefix) > 20 {
			prefix = prefix[:20]
		}
		baseName = fmt.Sprintf("%s-%s%s", string(prefix), hex.EncodeToString(hash[:8]), extension)
	}

	return baseName
}
