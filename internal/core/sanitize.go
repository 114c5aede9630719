package core

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const invalidFilenameChars = "<>:\"/\\|?*"

// sanitizeFilename makes name safe as a single path component: control and
// reserved characters become spaces, space runs collapse, and the result is
// NFC-normalized.
func sanitizeFilename(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name is empty after sanitization")
	}

	var b strings.Builder
	b.Grow(len(name))

	lastSpace := false
	for _, r := range norm.NFC.String(name) {
		if r < 32 || r == 127 || r == ' ' || strings.ContainsRune(invalidFilenameChars, r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}

	result := strings.TrimSpace(b.String())
	// A component of only dots would walk the directory tree.
	if strings.Trim(result, ".") == "" {
		return "", fmt.Errorf("name %q is empty after sanitization", name)
	}
	return result, nil
}
