package storage

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MaxImageSize is the largest accepted upload
const MaxImageSize = 5 << 20

var (
	ErrEmptyImage    = errors.New("image is empty")
	ErrImageTooLarge = fmt.Errorf("image exceeds %dMB", MaxImageSize>>20)
	ErrNotAnImage    = errors.New("only image files are allowed")
)

// DetectImage checks size and sniffs the content type, returning it for image payloads
func DetectImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if len(data) > MaxImageSize {
		return "", ErrImageTooLarge
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotAnImage
	}
	return contentType, nil
}
