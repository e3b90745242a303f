package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// FunctionURL resolves the invoke URL of a Supabase Edge Function from the
// project URL, e.g. https://ref.supabase.co + "import-questionnaire".
func FunctionURL(projectURL, functionName string) (string, error) {
	if functionName == "" {
		return "", fmt.Errorf("function name is empty")
	}
	base, err := url.Parse(projectURL)
	if err != nil {
		return "", err
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("project URL %q is not absolute", projectURL)
	}
	rel, err := url.Parse("functions/v1/" + strings.Trim(functionName, "/"))
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(rel).String(), nil
}
