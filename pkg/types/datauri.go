package types

import (
	"strings"
)

const defaultImageMIME = "image/png"

// ImageDataURI wraps a stored base64 image payload in a data URI for
// display. Storage keeps raw base64 only; the prefix is added here at the
// presentation boundary. Payloads that already carry a data: prefix pass
// through unchanged, and empty payloads stay empty.
func ImageDataURI(b64 string) string {
	if b64 == "" {
		return ""
	}
	if strings.HasPrefix(b64, "data:") {
		return b64
	}
	return "data:" + defaultImageMIME + ";base64," + b64
}

// StripDataURI returns the raw base64 payload of a data URI, for storage.
// Plain base64 input is returned as-is.
func StripDataURI(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if idx := strings.Index(s, ";base64,"); idx >= 0 {
		return s[idx+len(";base64,"):]
	}
	return s
}
