// Package secureurl rewrites asset URLs for safe embedding: HTTPS upgrade
// and CDN delivery transforms.
package secureurl

import (
	"net/url"
	"strings"
)

const imageTransform = "f_auto,q_auto/"

// corsParam marks an asset URL as fetched by a cross-origin media element.
const corsParam = "_cors"

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".avif", ".webp"}

// Normalize upgrades a URL to HTTPS and, for Cloudinary-hosted images,
// inserts the automatic format/quality delivery transform. It is idempotent
// and returns the empty string for empty input; input that does not parse as
// a URL is returned unchanged.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	if strings.Contains(parsed.Hostname(), "cloudinary.com") {
		if base, resource, ok := strings.Cut(raw, "/upload/"); ok {
			base = upgradeScheme(base)
			if isImage(resource) && !strings.HasPrefix(resource, imageTransform) {
				resource = imageTransform + resource
			}
			return base + "/upload/" + resource
		}
	}

	return upgradeScheme(raw)
}

// NormalizeEmbed normalizes a URL and appends the cross-origin marker
// parameter required when the asset feeds a crossorigin <video>/<img>
// element. Idempotent.
func NormalizeEmbed(raw string) string {
	normalized := Normalize(raw)
	if normalized == "" {
		return ""
	}

	parsed, err := url.Parse(normalized)
	if err != nil {
		return normalized
	}
	query := parsed.Query()
	if query.Get(corsParam) == "1" {
		return normalized
	}
	query.Set(corsParam, "1")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func upgradeScheme(raw string) string {
	if strings.HasPrefix(strings.ToLower(raw), "http://") {
		return "https://" + raw[len("http://"):]
	}
	return raw
}

func isImage(resource string) bool {
	lower := strings.ToLower(resource)
	if idx := strings.IndexAny(lower, "?#"); idx >= 0 {
		lower = lower[:idx]
	}
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
