package inputkind

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
)

var compoundArchiveSuffixes = []string{
	".tar.gz",
	".tar.bz2",
	".tar.xz",
	".tar.zst",
	".tar.lz",
	".tar.lzma",
}

var archiveExtensions = map[string]struct{}{
	".zip": {}, ".7z": {}, ".rar": {}, ".tar": {}, ".gz": {}, ".bz2": {},
	".xz": {}, ".zst": {}, ".tgz": {}, ".tbz2": {}, ".txz": {},
}

var trackSetExtensions = map[string]struct{}{
	".cue": {}, ".gdi": {},
}

var discImageExtensions = map[string]struct{}{
	".iso": {}, ".bin": {}, ".img": {}, ".mdf": {}, ".nrg": {}, ".cdi": {},
	".chd": {}, ".gcz": {}, ".rvz": {}, ".wbfs": {}, ".wia": {}, ".cso": {},
	".ciso": {}, ".zso": {},
}

// foldCase builds a fresh Caser per call; Casers carry state and are not
// safe for concurrent use.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

// Classify maps a filesystem path to its input kind. Only existence and the
// directory bit are consulted; a path that does not exist is classified by
// name.
func Classify(path string) Kind {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return GameFolderSet
	}
	return ClassifyName(path)
}

// ClassifyName classifies by file name alone. It never touches the
// filesystem, so it also serves extension-only inference.
func ClassifyName(name string) Kind {
	lower := foldCase(filepath.Base(name))
	for _, suffix := range compoundArchiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return ArchiveSet
		}
	}
	ext := filepath.Ext(lower)
	if _, ok := archiveExtensions[ext]; ok {
		return ArchiveSet
	}
	if _, ok := trackSetExtensions[ext]; ok {
		return DiscTrackSet
	}
	if _, ok := discImageExtensions[ext]; ok {
		return DiscImage
	}
	return RawRom
}

// NormalizeExtension case-folds ext and ensures a leading dot. Empty input
// stays empty.
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return ""
	}
	ext = foldCase(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Extension returns the normalized final extension of path.
func Extension(path string) string {
	return NormalizeExtension(filepath.Ext(path))
}
