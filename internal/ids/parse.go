package ids

import (
	"errors"
	"fmt"
	"strings"
)

// ErrExtraDelims is returned when a namespaced name string contains more
// than one ':' delimiter.
var ErrExtraDelims = errors.New("ids: too many ':' delimiters in namespaced name")

// ErrNoDelimNoFallback is returned when a namespaced name string has no
// ':' delimiter and no fallback namespace was supplied to assume one.
var ErrNoDelimNoFallback = errors.New("ids: no ':' delimiter and no fallback namespace")

// ParseNamespaced splits s of the form "namespace:name" into its parts.
// If s has no delimiter, fallback (if non-empty) is used as the
// namespace; an empty fallback with no delimiter is NoDelimNoFallback.
func ParseNamespaced(s, fallback string) (namespace, name string, err error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		if fallback == "" {
			return "", "", fmt.Errorf("%w: %q", ErrNoDelimNoFallback, s)
		}
		return fallback, parts[0], nil
	case 2:
		return parts[0], parts[1], nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrExtraDelims, s)
	}
}

// Namespaced joins a namespace and name back into "namespace:name" form.
func Namespaced(namespace, name string) string {
	return namespace + ":" + name
}
