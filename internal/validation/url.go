package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// StoryURLValidator checks the URL field of a story draft before it is
// sent to the server. The server validates again; this just catches the
// obvious cases without a round trip.
type StoryURLValidator struct {
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

func NewStoryURLValidator() *StoryURLValidator {
	return &StoryURLValidator{
		MaxLength: 2048,
	}
}

// ValidateAndNormalize validates a story URL and returns the normalized
// version. A missing scheme defaults to https.
func (v *StoryURLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}

	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		input = "https://" + input
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", fmt.Errorf("URL must use http or https protocol")
	}

	if parsedURL.Host == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}

	if !strings.Contains(parsedURL.Host, ".") && parsedURL.Host != "localhost" {
		return "", fmt.Errorf("hostname looks incomplete: %s", parsedURL.Host)
	}

	return parsedURL.String(), nil
}
