package structure

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

const (
	// TagInvalidPath marks a referenced name that was rejected without an
	// existence check.
	TagInvalidPath = "invalid-path"
	// TagNoTrackEntries marks a sheet that references no files at all.
	TagNoTrackEntries = "no-track-entries"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Tagged formats a descriptor as "<name> (<tag>)".
func Tagged(name, tag string) string {
	return name + " (" + tag + ")"
}

// SplitTag reverses Tagged. Untagged descriptors return an empty tag.
func SplitTag(entry string) (name, tag string) {
	for _, candidate := range []string{TagInvalidPath, TagNoTrackEntries} {
		suffix := " (" + candidate + ")"
		if strings.HasSuffix(entry, suffix) {
			return strings.TrimSuffix(entry, suffix), candidate
		}
	}
	return entry, ""
}

// TrackSet returns the missing or invalid files referenced by the CUE or GDI
// sheet at path. A sheet that does not exist or cannot be read yields a
// single entry holding path itself.
func TrackSet(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{path}
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var names []string
	if strings.EqualFold(filepath.Ext(path), ".gdi") {
		names = parseGDI(data)
	} else {
		names = parseCUE(data)
	}
	if len(names) == 0 {
		return []string{Tagged(filepath.Base(path), TagNoTrackEntries)}
	}

	dir := filepath.Dir(path)
	seen := make(map[string]struct{}, len(names))
	missing := make([]string, 0)
	for _, name := range names {
		var entry string
		if !safeTrackName(name) {
			entry = Tagged(name, TagInvalidPath)
		} else if _, err := os.Stat(resolveTrack(dir, name)); err != nil {
			entry = name
		} else {
			continue
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		missing = append(missing, entry)
	}
	return missing
}

// parseCUE collects the names of FILE commands. Names may be quoted or bare.
func parseCUE(data []byte) []string {
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) < 5 || !strings.EqualFold(line[:4], "FILE") {
			continue
		}
		if line[4] != ' ' && line[4] != '\t' {
			continue
		}
		rest := strings.TrimSpace(line[5:])
		if name, ok := quoted(rest); ok {
			names = append(names, name)
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			names = append(names, "")
			continue
		}
		names = append(names, fields[0])
	}
	return names
}

// parseGDI collects the filename column of every track line. The first
// non-empty line is the track count header.
func parseGDI(data []byte) []string {
	var names []string
	header := true
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if header {
			header = false
			continue
		}
		if idx := strings.IndexByte(line, '"'); idx >= 0 {
			if name, ok := quoted(line[idx:]); ok {
				names = append(names, name)
				continue
			}
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		names = append(names, fields[4])
	}
	return names
}

func quoted(s string) (string, bool) {
	if !strings.HasPrefix(s, `"`) {
		return "", false
	}
	end := strings.IndexByte(s[1:], '"')
	if end < 0 {
		return "", false
	}
	return s[1 : end+1], true
}

// safeTrackName rejects empty names, drive letters, absolute paths and any
// parent-directory segment in either separator style.
func safeTrackName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	if len(name) >= 2 && name[1] == ':' && isASCIILetter(name[0]) {
		return false
	}
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) || filepath.IsAbs(name) {
		return false
	}
	for _, segment := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if segment == ".." {
			return false
		}
	}
	return true
}

func resolveTrack(dir, name string) string {
	return filepath.Join(dir, filepath.FromSlash(strings.ReplaceAll(name, `\`, "/")))
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
