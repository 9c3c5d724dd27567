package utils

import "bytes"

// binarySniffLength bounds the prefix scanned for NUL bytes.
const binarySniffLength = 8000

// ContainsNullByte reports whether the leading part of data holds a NUL byte,
// the usual marker of binary content.
func ContainsNullByte(data []byte) bool {
	if len(data) > binarySniffLength {
		data = data[:binarySniffLength]
	}
	return bytes.IndexByte(data, 0) >= 0
}
