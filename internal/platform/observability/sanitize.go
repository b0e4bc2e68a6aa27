package observability

import (
	"strings"
	"unicode"
)

// Log fields built from request data pass through here first so a crafted
// header or path cannot inject control sequences or bloat log entries.

const (
	maxRouteRunes  = 180
	maxMethodRunes = 10
	maxIDRunes     = 64
)

func sanitizeString(value string, limit int) string {
	if limit <= 0 {
		limit = maxIDRunes
	}

	var b strings.Builder
	b.Grow(len(value))
	kept := 0
	for _, r := range value {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			continue
		}
		if kept >= limit {
			break
		}
		b.WriteRune(r)
		kept++
	}
	return b.String()
}

// SanitizeRoute cleans a route pattern or URL path for logging.
func SanitizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	return sanitizeString(route, maxRouteRunes)
}

// SanitizeMethod cleans an HTTP method for logging.
func SanitizeMethod(method string) string {
	return sanitizeString(method, maxMethodRunes)
}

// SanitizeUserID caps identifiers so full tokens never end up in logs.
func SanitizeUserID(uid string) string {
	if uid == "" {
		return ""
	}
	return sanitizeString(uid, maxIDRunes)
}
