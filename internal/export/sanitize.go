package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

var ErrInvalidOutputDir = errors.New("invalid output_dir")

// edge characters trimmed from names so a title never yields a hidden file
const nameTrim = " ._"

// SanitizeName turns a draft title or clip source into a file-safe name.
// Control characters are dropped, each run of other unsafe characters becomes
// one '_', and the result is cut to maxLen runes when maxLen > 0.
func SanitizeName(s string, maxLen int) string {
	var b strings.Builder
	replaced := false
	for _, r := range s {
		switch {
		case unicode.IsControl(r):
		case nameRune(r):
			b.WriteRune(r)
			replaced = false
		case !replaced:
			b.WriteRune('_')
			replaced = true
		}
	}

	name := strings.Trim(b.String(), nameTrim)
	if maxLen > 0 {
		if runes := []rune(name); len(runes) > maxLen {
			name = strings.TrimRight(string(runes[:maxLen]), nameTrim)
		}
	}
	return name
}

func nameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(" -_.,()", r)
}

// ValidateOutputDir accepts an existing directory given as a clean path with
// no ".." segments. Failures wrap ErrInvalidOutputDir.
func ValidateOutputDir(dir string) error {
	invalid := func(reason string) error {
		return fmt.Errorf("%w: %s", ErrInvalidOutputDir, reason)
	}

	switch {
	case strings.TrimSpace(dir) == "":
		return invalid("is required")
	case slices.Contains(strings.Split(filepath.ToSlash(dir), "/"), ".."):
		return invalid("cannot contain path traversal")
	case filepath.Clean(dir) != dir:
		return invalid("must be clean path")
	}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return invalid("does not exist")
	case err != nil:
		return invalid(err.Error())
	case !info.IsDir():
		return invalid("is not a directory")
	}
	return nil
}
