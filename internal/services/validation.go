package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"craftfolio.dev/internal/models"
)

const (
	minTitleLength       = 3
	minDescriptionLength = 10
	minMessageLength     = 10
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// contactSanitizer strips characters that could smuggle markup into stored messages
var contactSanitizer = strings.NewReplacer("<", "", ">", "", "/", "", `"`, "", "'", "")

// normalizeProject trims surrounding whitespace from every field
func normalizeProject(in models.ProjectInput) models.ProjectInput {
	return models.ProjectInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Link:        strings.TrimSpace(in.Link),
		Thumbnail:   strings.TrimSpace(in.Thumbnail),
		Category:    models.Category(strings.TrimSpace(string(in.Category))),
	}
}

// validateProject checks a normalized input and reports the first violated rule
func validateProject(in models.ProjectInput) error {
	if in.Title == "" {
		return invalid(`"title" is required`)
	}
	if utf8.RuneCountInString(in.Title) < minTitleLength {
		return invalid(fmt.Sprintf(`"title" length must be at least %d characters long`, minTitleLength))
	}
	if in.Description == "" {
		return invalid(`"description" is required`)
	}
	if utf8.RuneCountInString(in.Description) < minDescriptionLength {
		return invalid(fmt.Sprintf(`"description" length must be at least %d characters long`, minDescriptionLength))
	}
	if in.Link == "" {
		return invalid(`"link" is required`)
	}
	if !isURI(in.Link) {
		return invalid(`"link" must be a valid uri`)
	}
	if in.Thumbnail == "" {
		return invalid(`"thumbnail" is required`)
	}
	if in.Category == "" {
		return invalid(`"category" is required`)
	}
	if !in.Category.Valid() {
		return invalid(`"category" must be one of [All, Frontend, Backend, Fullstack]`)
	}
	return nil
}

// isURI accepts absolute URIs with a scheme and an authority or opaque part
func isURI(raw string) bool {
	if strings.ContainsAny(raw, " \t\n") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}

// sanitizeContact strips markup characters and surrounding whitespace
func sanitizeContact(s string) string {
	return strings.TrimSpace(contactSanitizer.Replace(s))
}

// validateContact checks a sanitized message and reports the first violated rule
func validateContact(name, email, message string) error {
	if name == "" || email == "" || message == "" {
		return invalid("All fields are required.")
	}
	if !emailPattern.MatchString(email) {
		return invalid("Please enter a valid email address.")
	}
	if utf8.RuneCountInString(message) < minMessageLength {
		return invalid(fmt.Sprintf("Message must be at least %d characters long.", minMessageLength))
	}
	return nil
}
