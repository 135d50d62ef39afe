package mapping

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

// Base64Prefix marks a value that was base64 encoded to stay ASCII only
const Base64Prefix = "base64:"

// MakeASCIISafe returns text unchanged when it is nil or pure US-ASCII.
// Otherwise it returns "base64:" followed by the unpadded standard base64
// of its UTF-8 bytes, so the value can travel in an HTTP header.
func MakeASCIISafe(text *string) *string {
	if text == nil || isASCII(*text) {
		return text
	}
	encoded := Base64Prefix + base64.RawStdEncoding.EncodeToString([]byte(*text))
	return &encoded
}

// DecodeASCIISafe reverses MakeASCIISafe
func DecodeASCIISafe(text *string) (*string, error) {
	if text == nil || !strings.HasPrefix(*text, Base64Prefix) {
		return text, nil
	}
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(*text, Base64Prefix))
	if err != nil {
		return nil, err
	}
	decoded := string(raw)
	return &decoded, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
