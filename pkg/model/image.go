package model

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ErrUnsupportedImage is returned for payloads the model service cannot read.
var ErrUnsupportedImage = goerr.New("unsupported image format, use PNG, JPEG or WEBP")

var supportedMIMETypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/heic": ".heic",
	"image/heif": ".heif",
}

// Image is a binary image payload. Data must be treated as read-only once the
// image has been handed to the history store.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// NewImage validates the payload and normalizes its MIME type.
func NewImage(name, mimeType string, data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, goerr.New("image data is empty", goerr.V("name", name))
	}

	mimeType = NormalizeMIMEType(mimeType)
	if mimeType == "" {
		mimeType = NormalizeMIMEType(http.DetectContentType(data))
	}
	if _, ok := supportedMIMETypes[mimeType]; !ok {
		return nil, goerr.Wrap(ErrUnsupportedImage, "cannot accept image",
			goerr.V("name", name), goerr.V("mime_type", mimeType))
	}

	return &Image{Name: name, MIMEType: mimeType, Data: data}, nil
}

// LoadImage reads an image file from disk.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read image file", goerr.V("path", path))
	}

	mimeType := ""
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		mimeType = "image/png"
	case ".jpg", ".jpeg":
		mimeType = "image/jpeg"
	case ".webp":
		mimeType = "image/webp"
	case ".heic":
		mimeType = "image/heic"
	case ".heif":
		mimeType = "image/heif"
	}

	return NewImage(filepath.Base(path), mimeType, data)
}

// NormalizeMIMEType lower-cases the type, drops parameters and maps the
// non-standard image/jpg alias.
func NormalizeMIMEType(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "image/jpg" {
		return "image/jpeg"
	}
	return mimeType
}

// Extension returns the file extension matching the MIME type.
func (img *Image) Extension() string {
	if ext, ok := supportedMIMETypes[img.MIMEType]; ok {
		return ext
	}
	return ".png"
}

// Digest is the hex encoded SHA-256 of the image bytes.
func (img *Image) Digest() string {
	sum := sha256.Sum256(img.Data)
	return hex.EncodeToString(sum[:])
}
