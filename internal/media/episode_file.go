package media

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var (
	// showLineRe matches the header line: "Title" or "Title (2001)".
	showLineRe = regexp.MustCompile(`^(.*?\S)(?:\s+\((\d{4})\))?$`)

	// episodeLineRe matches "1x02 Episode Title".
	episodeLineRe = regexp.MustCompile(`^(\d+)x(\d+)\s+(.*\S)$`)
)

// FormatError reports a malformed episode file.
type FormatError struct {
	Path string
	Line int
	Text string
	Msg  string
}

func (e *FormatError) Error() string {
	name := e.Path
	if name == "" {
		name = "episode file"
	}
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", name, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s: %q", name, e.Line, e.Msg, e.Text)
}

// LoadEpisodeFile reads a show and its episodes from a text file.
func LoadEpisodeFile(path string) (*TVShow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open episode file: %w", err)
	}
	defer f.Close()

	show, err := ParseEpisodeFile(f)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.Path = path
		}
		return nil, err
	}
	return show, nil
}

// ParseEpisodeFile parses the episode file format. The first line names the
// show, optionally followed by " (YYYY)". Every following line is
// "{season}x{episode} {title}".
func ParseEpisodeFile(r io.Reader) (*TVShow, error) {
	scanner := bufio.NewScanner(r)
	show := &TVShow{}
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if lineNo == 1 {
			m := showLineRe.FindStringSubmatch(line)
			if m == nil {
				return nil, &FormatError{Line: lineNo, Text: line, Msg: "expected \"Title\" or \"Title (Year)\""}
			}
			show.Title = strings.TrimSpace(m[1])
			show.Year = m[2]
			continue
		}

		m := episodeLineRe.FindStringSubmatch(line)
		if m == nil {
			return nil, &FormatError{Line: lineNo, Text: line, Msg: "expected \"SxE Title\""}
		}
		season, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, &FormatError{Line: lineNo, Text: line, Msg: "invalid season number"}
		}
		number, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, &FormatError{Line: lineNo, Text: line, Msg: "invalid episode number"}
		}
		show.Episodes = append(show.Episodes, Episode{Season: season, Number: number, Title: m[3]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read episode file: %w", err)
	}

	if lineNo == 0 {
		return nil, &FormatError{Msg: "file is empty"}
	}
	if len(show.Episodes) == 0 {
		return nil, &FormatError{Msg: "no episodes found"}
	}
	return show, nil
}
