package blob

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrInvalidDataURL = errors.New("invalid data URL")

const defaultContentType = "application/octet-stream"

// IsDataURL reports whether ref is an inline data URL rather than a stored path.
func IsDataURL(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

// ParseDataURL decodes "data:[<mediatype>][;base64],<data>".
func ParseDataURL(s string) (contentType string, data []byte, err error) {
	if !IsDataURL(s) {
		return "", nil, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing comma", ErrInvalidDataURL)
	}

	isBase64 := false
	params := strings.Split(meta, ";")
	contentType = params[0]
	for _, p := range params[1:] {
		if p == "base64" {
			isBase64 = true
		}
	}
	if contentType == "" {
		contentType = defaultContentType
	}

	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// some encoders drop padding
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
		}
		return contentType, data, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return contentType, []byte(unescaped), nil
}

// EncodeDataURL renders data as a base64 data URL.
func EncodeDataURL(contentType string, data []byte) string {
	if contentType == "" {
		contentType = defaultContentType
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
