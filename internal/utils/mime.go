package utils

import (
	"net/http"
	"strings"
)

// sniffLength bounds the number of bytes inspected by content sniffing.
const sniffLength = 512

// UnknownMimeType is returned when no content is available to sniff.
const UnknownMimeType = "application/octet-stream"

var nonTextMimePrefixes = []string{
	"image/",
	"audio/",
	"video/",
	"font/",
	"application/pdf",
	"application/zip",
	"application/x-gzip",
	"application/x-rar-compressed",
	"application/vnd.ms-fontobject",
	"application/wasm",
	"application/ogg",
}

// DetectMimeType returns the MIME type of data using http.DetectContentType
// over at most the first sniffLength bytes.
func DetectMimeType(data []byte) string {
	if len(data) == 0 {
		return UnknownMimeType
	}
	if len(data) > sniffLength {
		data = data[:sniffLength]
	}
	return http.DetectContentType(data)
}

// IsMediaMimeType reports whether mimeType names content that is clearly not text.
func IsMediaMimeType(mimeType string) bool {
	for _, prefix := range nonTextMimePrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}
