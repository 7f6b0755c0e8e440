package structure

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"romnorm/internal/inputkind"
	"romnorm/internal/registry"
)

// FolderSet returns the required manifests missing under root for every
// format of platformID that applies to game folders. Manifests are
// slash-separated relative paths; entries containing glob metacharacters
// need at least one match. An empty platformID yields nil.
func FolderSet(root, platformID string, formats []registry.FormatDefinition) []string {
	platformID = strings.TrimSpace(platformID)
	if platformID == "" {
		return nil
	}
	fsys := os.DirFS(root)
	seen := make(map[string]struct{})
	var missing []string
	for _, format := range formats {
		if !strings.EqualFold(format.PlatformID, platformID) || !format.AcceptsKind(inputkind.GameFolderSet) {
			continue
		}
		for _, manifest := range format.RequiredManifests {
			rel := cleanManifest(manifest)
			if rel == "" {
				continue
			}
			if _, dup := seen[rel]; dup {
				continue
			}
			seen[rel] = struct{}{}
			if !manifestPresent(fsys, root, rel) {
				missing = append(missing, rel)
			}
		}
	}
	return missing
}

func cleanManifest(manifest string) string {
	manifest = strings.TrimSpace(strings.ReplaceAll(manifest, `\`, "/"))
	if manifest == "" {
		return ""
	}
	return strings.TrimPrefix(path.Clean(manifest), "./")
}

func manifestPresent(fsys fs.FS, root, rel string) bool {
	if !safeTrackName(rel) {
		return false
	}
	if hasGlobMeta(rel) {
		matches, err := doublestar.Glob(fsys, rel)
		return err == nil && len(matches) > 0
	}
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}

func hasGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
