package resume

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidFormat = errors.New("invalid resume format")

const (
	dataPrefix   = "data:"
	base64Marker = ";base64,"
)

// EncodeDataURI renders data as data:<contentType>;base64,<payload>.
func EncodeDataURI(contentType string, data []byte) string {
	return dataPrefix + contentType + base64Marker + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a data URI written by EncodeDataURI back into its
// content type and bytes.
func DecodeDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, dataPrefix) {
		return "", nil, ErrInvalidFormat
	}

	contentType, payload, ok := strings.Cut(strings.TrimPrefix(uri, dataPrefix), base64Marker)
	if !ok {
		return "", nil, ErrInvalidFormat
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Join(ErrInvalidFormat, err)
	}
	return contentType, data, nil
}

// IsDataURI reports whether locator holds inline bytes.
func IsDataURI(locator string) bool {
	return strings.HasPrefix(locator, dataPrefix)
}
