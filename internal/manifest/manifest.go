package manifest

import (
	"fmt"
	"os"
	"strings"
)

// Download is one parsed manifest entry: a source URL and the file name it
// materializes as in the sources directory.
type Download struct {
	URL  string
	Dest string
}

func (d Download) String() string {
	return d.URL + " -> " + d.Dest
}

// InvalidEntryError reports a manifest line that is neither a comment nor a
// parseable download entry.
type InvalidEntryError struct {
	Line string
}

func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("manifest: invalid entry: %q", e.Line)
}

// inline comment markers, checked in source order; the earliest match in the
// line wins.
var commentMarkers = []string{" #", " //", " ;"}

// Parse parses manifest text into an ordered list of downloads.
//
// Blank lines and comment lines (leading-trimmed lines starting with "# ",
// "; ", or "// ") yield nothing. Remaining lines are either
// "<url> -> <dest>" or a bare URL whose destination is the final
// '/'-separated segment. Parsing is pure text transformation; no network or
// filesystem access happens here.
func Parse(text string) ([]Download, error) {
	var dls []Download

	for _, line := range strings.Split(text, "\n") {
		if isComment(line) {
			continue
		}

		dl, err := parseEntry(stripInlineComment(line))
		if err != nil {
			return nil, err
		}
		dls = append(dls, dl)
	}

	return dls, nil
}

// ParseFile reads and parses a manifest file.
func ParseFile(path string) ([]Download, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(string(data))
}

// parseEntry parses a single cleaned line into a Download.
func parseEntry(line string) (Download, error) {
	if url, dest, ok := strings.Cut(line, " -> "); ok {
		if dest == "" {
			return Download{}, &InvalidEntryError{Line: line}
		}
		return Download{URL: url, Dest: dest}, nil
	}

	i := strings.LastIndex(line, "/")
	if i < 0 || i == len(line)-1 {
		return Download{}, &InvalidEntryError{Line: line}
	}

	return Download{URL: line, Dest: line[i+1:]}, nil
}

// isComment reports whether a line is blank or a comment. A line is a
// comment if, after trimming leading whitespace, it starts with "# ", "; ",
// or "// ".
func isComment(line string) bool {
	l := strings.TrimLeft(line, " \t")
	return l == "" ||
		strings.HasPrefix(l, "# ") ||
		strings.HasPrefix(l, "; ") ||
		strings.HasPrefix(l, "// ")
}

// stripInlineComment truncates a line at the earliest of " #", " //", or
// " ;" and right-trims the remainder.
func stripInlineComment(line string) string {
	cut := -1
	for _, m := range commentMarkers {
		if i := strings.Index(line, m); i >= 0 && (cut < 0 || i < cut) {
			cut = i
		}
	}
	if cut < 0 {
		return line
	}
	return strings.TrimRight(line[:cut], " \t")
}
