package errors

import (
	"net/url"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxIDLength bounds item and edge identifiers, in bytes.
const MaxIDLength = 256

// ValidateID checks an identifier taken from a document or a request. The
// engine tolerates empty ids on items it can ignore; callers that need an
// addressable item use this instead.
func ValidateID(id string) error {
	switch {
	case id == "":
		return New(ErrCodeInvalidID, "id cannot be empty")
	case len(id) > MaxIDLength:
		return New(ErrCodeInvalidID, "id too long (max %d bytes)", MaxIDLength)
	case !utf8.ValidString(id):
		return New(ErrCodeInvalidID, "id %q is not valid UTF-8", id)
	case strings.IndexFunc(id, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidID, "id %q contains control characters", id)
	}
	return nil
}

// ValidateRedisURL checks a Redis connection URL from configuration.
func ValidateRedisURL(raw string) error {
	if raw == "" {
		return New(ErrCodeInvalidInput, "redis URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "redis URL is malformed")
	}
	switch u.Scheme {
	case "redis", "rediss":
		if u.Host == "" {
			return New(ErrCodeInvalidInput, "redis URL %q has no host", raw)
		}
	case "unix":
		if u.Path == "" {
			return New(ErrCodeInvalidInput, "redis URL %q has no socket path", raw)
		}
	default:
		return New(ErrCodeInvalidInput, "redis URL must use the redis, rediss or unix scheme")
	}
	return nil
}

// ValidateFormat checks that format is one of allowed.
func ValidateFormat(format string, allowed ...string) error {
	if slices.Contains(allowed, format) {
		return nil
	}
	return New(ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(allowed, ", "))
}
