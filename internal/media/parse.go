package media

import (
	"regexp"
	"strings"
)

// Filename helpers used when computing destination names and when ranking
// search candidates against a local file.
var (
	// videoRe matches video file extensions.
	videoRe = regexp.MustCompile(`(?i)\.(mp4|mkv|avi|mov|wmv|flv|webm|mpeg|mpg|m4v|3gp|vob|ts|mts|m2ts|rmvb|divx)$`)

	// subtitleRe matches subtitle file extensions (case‑insensitive).
	subtitleRe = regexp.MustCompile(`(?i)\.(srt|sub|idx|ass|ssa|smi|vtt|sbv|sami|usf|stl|dks|pjs|jss|psb|rt|scc|cap|sup|dfxp|ttml)$`)

	// langPattern matches trailing language codes before subtitle extension: .en, .eng, .en-US.
	langPattern = regexp.MustCompile(`(\.[a-zA-Z]{2,3}(?:[-_][a-zA-Z]{2,4})?)$`)

	// yearRe finds a release year; everything after it in a scene name is noise.
	yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	// seasonEpisodeRe finds S01E02 / 1x02 markers, after which a scene name is noise.
	seasonEpisodeRe = regexp.MustCompile(`(?i)\b[s]?\d+[ex]\d+\b`)

	// encodingTagsRe removes codec/resolution/source tags to isolate the title.
	encodingTagsRe = regexp.MustCompile(`(?i)\b(?:HDR|DV|x265|x264|H\.?264|H\.?265|HEVC|AVC|AAC|AC3|DTS|FLAC|WEB-?DL|WEBRip|BluRay|BDRip|DVDRip|HDTV|720p|1080p|2160p|4K|UHD|10bit|PROPER|REPACK|EXTENDED|UNRATED|REMASTERED)\b`)
)

// IsVideo reports whether filename has a recognized video extension.
func IsVideo(filename string) bool {
	return videoRe.MatchString(filename)
}

// IsSubtitle reports whether filename has a recognized subtitle extension.
func IsSubtitle(filename string) bool {
	return subtitleRe.MatchString(filename)
}

// extractSubtitleSuffix extracts the language code and extension from subtitle files.
// For example: "movie.en.srt" returns ".en.srt", "movie.srt" returns ".srt"
func extractSubtitleSuffix(filename string) string {
	subtitleMatch := subtitleRe.FindStringIndex(filename)
	if len(subtitleMatch) == 0 {
		return ""
	}

	beforeExt := filename[:subtitleMatch[0]]
	langMatch := langPattern.FindString(beforeExt)

	return langMatch + filename[subtitleMatch[0]:]
}

// ExtractExtension returns the extension of a file name including the dot.
// Subtitles keep their language tag (".en.srt"). Only the base name is
// inspected, so dots in directory names are ignored.
func ExtractExtension(filename string) string {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i != -1 {
		base = base[i+1:]
	}
	if IsSubtitle(base) {
		return extractSubtitleSuffix(base)
	}
	if dotIndex := strings.LastIndex(base, "."); dotIndex > 0 {
		return base[dotIndex:]
	}
	return ""
}

// CleanName turns a release-style file name into something comparable with a
// canonical title: extension, separators and release tags are dropped, and
// anything after a year or episode marker is cut.
func CleanName(filename string) string {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i != -1 {
		base = base[i+1:]
	}
	if ext := ExtractExtension(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}

	base = strings.NewReplacer(".", " ", "_", " ", "[", " ", "]", " ").Replace(base)

	if loc := seasonEpisodeRe.FindStringIndex(base); loc != nil && loc[0] > 0 {
		base = base[:loc[0]]
	}
	if loc := yearRe.FindStringIndex(base); loc != nil && loc[0] > 0 {
		base = base[:loc[0]]
	}
	base = encodingTagsRe.ReplaceAllString(base, " ")
	base = strings.Trim(base, " -()")

	return strings.Join(strings.Fields(base), " ")
}
