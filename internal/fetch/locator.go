package fetch

import (
	"net/url"
	"regexp"
	"strings"

	apperrors "github.com/ThomasTsao0704/stock-analysis-app/internal/errors"
)

// bareIDPattern matches a standalone Drive file identifier. Real file IDs
// are well over 20 characters, which keeps short junk strings from being
// mistaken for one.
var bareIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{20,}$`)

// idCharsPattern matches the identifier charset when extracting from a URL.
var idCharsPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ExtractFileID resolves a user-supplied locator into a file identifier.
// Accepted shapes:
//   - a bare identifier (alphanumeric plus - and _, at least 20 chars)
//   - a sharing URL with the identifier after a /d/ path segment,
//     e.g. https://drive.google.com/file/d/<id>/view?usp=sharing
//   - a URL carrying the identifier as an id= query parameter
func ExtractFileID(locator string) (string, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return "", apperrors.NewInvalidLocator(locator)
	}

	if bareIDPattern.MatchString(locator) {
		return locator, nil
	}

	u, err := url.Parse(locator)
	if err != nil || u.Host == "" {
		return "", apperrors.NewInvalidLocator(locator)
	}

	// /file/d/<id>/view style path segment.
	segments := strings.Split(u.Path, "/")
	for i, seg := range segments {
		if seg == "d" && i+1 < len(segments) {
			if id := segments[i+1]; idCharsPattern.MatchString(id) {
				return id, nil
			}
		}
	}

	// uc?export=download&id=<id> style query parameter.
	if id := u.Query().Get("id"); id != "" && idCharsPattern.MatchString(id) {
		return id, nil
	}

	return "", apperrors.NewInvalidLocator(locator)
}
