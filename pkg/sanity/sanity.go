// SPDX-License-Identifier: Apache-2.0

// Package sanity validates user-provided configuration values before they
// reach the filesystem or the network.
package sanity

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joomcode/errorx"
)

var (
	// shellMetachars contains shell metacharacters that are rejected in paths
	shellMetachars = regexp.MustCompile("[;&|$`<>(){}\\[\\]*?~]")

	// validPathChars allows alphanumeric, forward slash, dash, underscore, dot
	validPathChars = regexp.MustCompile(`^[a-zA-Z0-9/_.\-]+$`)

	// validIdentifier matches names usable as file and directory components
	validIdentifier = regexp.MustCompile(`^[a-z0-9]([a-z0-9\-_]*[a-z0-9])?$`)
)

// ValidateURLOptions controls URL validation.
type ValidateURLOptions struct {
	// AllowHTTP permits plain http URLs. Only intended for tests and
	// air-gapped mirrors on trusted networks.
	AllowHTTP bool
}

// SanitizePath validates and normalizes an absolute filesystem path.
//
// It rejects empty and relative paths, ".." segments, shell metacharacters,
// and any character outside [a-zA-Z0-9/_.-]. The returned path is cleaned and
// may differ from the input.
func SanitizePath(path string) (string, error) {
	if path == "" {
		return "", errorx.IllegalArgument.New("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		return "", errorx.IllegalArgument.New("path must be absolute: %s", path)
	}

	// Traversal is checked before cleaning so "a/../../b" cannot slip through
	for _, segment := range strings.Split(path, "/") {
		if segment == ".." {
			return "", errorx.IllegalArgument.New("path cannot contain '..' segments: %s", path)
		}
	}

	if shellMetachars.MatchString(path) {
		return "", errorx.IllegalArgument.New("path contains shell metacharacters: %s", path)
	}

	if !validPathChars.MatchString(path) {
		return "", errorx.IllegalArgument.New("path contains invalid characters: %s", path)
	}

	return filepath.Clean(path), nil
}

// ValidateIdentifier validates a name intended to become a file or directory
// component, such as an asset name. Lowercase alphanumerics, dashes and
// underscores only, starting and ending with an alphanumeric.
func ValidateIdentifier(name string) error {
	if name == "" {
		return errorx.IllegalArgument.New("identifier cannot be empty")
	}
	if !validIdentifier.MatchString(name) {
		return errorx.IllegalArgument.New("invalid identifier: %s", name)
	}
	return nil
}

// ValidateURL validates a download URL or URL template. Templates may contain
// {{.NAME}} style actions in the path; only the scheme and host are checked.
func ValidateURL(rawURL string, opts *ValidateURLOptions) error {
	if opts == nil {
		opts = &ValidateURLOptions{}
	}

	if rawURL == "" {
		return errorx.IllegalArgument.New("url cannot be empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errorx.IllegalArgument.Wrap(err, "invalid url: %s", rawURL)
	}

	switch parsed.Scheme {
	case "https":
	case "http":
		if !opts.AllowHTTP {
			return errorx.IllegalArgument.New("url must use https: %s", rawURL)
		}
	default:
		return errorx.IllegalArgument.New("unsupported url scheme %q: %s", parsed.Scheme, rawURL)
	}

	if parsed.Host == "" {
		return errorx.IllegalArgument.New("url has no host: %s", rawURL)
	}

	return nil
}
