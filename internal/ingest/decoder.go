package ingest

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"daybill/internal/domain"
)

// decode converts the raw upload from TIS-620 (Windows-874) to UTF-8.
//
// The charmap decoder never fails outright: bytes with no assignment in the
// code page come out as U+FFFD. Any replacement rune therefore means the
// input was not the expected code page (binary junk, UTF-16, a zip
// container) and the whole call is rejected per the decoding contract.
func decode(raw []byte) (string, error) {
	decoded, _, err := transform.Bytes(charmap.Windows874.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBadEncoding, err)
	}
	text := string(decoded)
	if strings.ContainsRune(text, '�') {
		return "", fmt.Errorf("%w: byte outside code page", domain.ErrBadEncoding)
	}
	return text, nil
}
