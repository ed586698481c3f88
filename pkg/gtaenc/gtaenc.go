// Package gtaenc provides text handling for GTA asset formats, whose
// fixed-width string buffers use the Windows-1252 code page.
package gtaenc

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Windows1252ToUTF8 converts Windows-1252 encoded bytes to a UTF-8
// string. Returns the input reinterpreted as-is if conversion fails.
func Windows1252ToUTF8(data []byte) string {
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// FixedString decodes a fixed-width, null-padded string buffer:
// contents up to the first null byte, converted from Windows-1252.
func FixedString(data []byte) string {
	if idx := bytes.IndexByte(data, 0); idx >= 0 {
		data = data[:idx]
	}
	return Windows1252ToUTF8(data)
}

// NormalizePath normalizes an archive path for case-insensitive
// lookup: backslashes become forward slashes, letters fold to lower
// case. The game's file tables mix both separators and any casing.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.ToLower(path)
}
