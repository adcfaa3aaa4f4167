package utils

import "strings"

// Slugify derives a URL identifier from a title by replacing spaces with
// hyphens. Deliberately simple; titles are already length-validated.
func Slugify(title string) string {
	return strings.ReplaceAll(strings.TrimSpace(title), " ", "-")
}
