package core

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Digital-Shane/title-fetch/internal/media"
)

var bracketTagPattern = regexp.MustCompile(`\[[^\[\]]+\]`)

// KeepSourceTags carries bracketed tags such as "[Uncut]" from the source
// file name over to dst, ahead of its extension. Tags already in dst are not
// repeated; comparison ignores case.
func KeepSourceTags(dst, src string) string {
	srcBase := filepath.Base(src)
	srcBase = strings.TrimSuffix(srcBase, media.ExtractExtension(srcBase))
	sourceTags := bracketTagPattern.FindAllString(srcBase, -1)
	if len(sourceTags) == 0 {
		return dst
	}

	ext := media.ExtractExtension(dst)
	stem := strings.TrimSuffix(dst, ext)

	seen := make(map[string]struct{})
	for _, tag := range bracketTagPattern.FindAllString(filepath.Base(stem), -1) {
		seen[normalizeBracketTag(tag)] = struct{}{}
	}

	var added strings.Builder
	for _, tag := range sourceTags {
		norm := normalizeBracketTag(tag)
		if norm == "" {
			continue
		}
		if _, exists := seen[norm]; exists {
			continue
		}
		seen[norm] = struct{}{}
		added.WriteString(tag)
	}
	if added.Len() == 0 {
		return dst
	}
	return stem + " " + added.String() + ext
}

func normalizeBracketTag(tag string) string {
	trimmed := strings.TrimSpace(tag)
	if len(trimmed) >= 2 && strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		trimmed = trimmed[1 : len(trimmed)-1]
	}
	return strings.ToLower(strings.TrimSpace(trimmed))
}
