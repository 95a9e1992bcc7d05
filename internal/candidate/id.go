package candidate

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// DeriveID resolves a best-effort stable identifier for a candidate card.
// Preference order: a native data attribute, an id embedded in the card's
// link URL, a hash of the card content, and finally a random id so the card
// can still be deduplicated within the run.
func DeriveID(nativeAttr, linkURL, content string) string {
	if id := strings.TrimSpace(nativeAttr); id != "" {
		return id
	}

	if id := idFromURL(linkURL); id != "" {
		return id
	}

	if content = strings.TrimSpace(content); content != "" {
		sum := sha256.Sum256([]byte(content))
		return fmt.Sprintf("text-%x", sum[:8])
	}

	return "rand-" + uuid.NewString()
}

// idFromURL extracts a candidate identifier from a profile link, either the
// last path segment or a geek/uid style query parameter.
func idFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	for _, key := range []string{"uid", "geekId", "expectId"} {
		if v := u.Query().Get(key); v != "" {
			return v
		}
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}
	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	last = strings.TrimSuffix(last, ".html")
	if last == "" || last == "recommend" || last == "search" {
		return ""
	}
	return last
}
