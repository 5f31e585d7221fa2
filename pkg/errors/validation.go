package errors

import (
	"net/url"
	"regexp"
	"strings"
)

// Validation constants.
const (
	// MaxPackageNameLength is the maximum allowed package name length.
	MaxPackageNameLength = 214
)

// pythonPackageNameRegex validates Python package names per PEP 508.
// Names must start and end with a letter or digit, and may contain
// letters, digits, periods, hyphens, and underscores between.
var pythonPackageNameRegex = regexp.MustCompile(`^([A-Za-z0-9]|[A-Za-z0-9][A-Za-z0-9._-]*[A-Za-z0-9])$`)

// ValidatePackageName validates a package name for general use.
// Returns an error if the name is empty, too long, or contains
// path traversal sequences.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}
	if len(name) > MaxPackageNameLength {
		return New(ErrCodeInvalidPackage, "package name too long: %d characters (max %d)", len(name), MaxPackageNameLength)
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPackage, "package name cannot contain path traversal sequences: %s", name)
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPackage, "package name cannot contain path separators: %s", name)
	}
	return nil
}

// ValidatePythonPackageName validates a Python package name per PEP 508.
func ValidatePythonPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}
	if !pythonPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid Python package name: %s", name)
	}
	return nil
}

// ValidatePath validates a filesystem path for safety.
// Rejects empty paths and paths containing null bytes.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return New(ErrCodeInvalidPath, "path contains null byte")
	}
	return nil
}

// ValidateURL validates that a URL is well-formed and uses HTTP or HTTPS.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL: %s", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme: %s", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must have a host: %s", rawURL)
	}
	return nil
}
