package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"romnorm/internal/inputkind"
	"romnorm/internal/registry"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInspectTrackSet(t *testing.T) {
	dir := t.TempDir()
	cue := filepath.Join(dir, "game.cue")
	writeTestFile(t, cue, "FILE \"A.bin\" BINARY\nFILE \"B.bin\" BINARY\nFILE \"../C.bin\" BINARY\n")
	writeTestFile(t, filepath.Join(dir, "A.bin"), "x")

	item := Inspect(cue, "psx", nil)
	if item.InputKind != inputkind.DiscTrackSet || item.Status != StatusFailed {
		t.Fatalf("kind=%s status=%s", item.InputKind, item.Status)
	}
	if len(item.Issues) != 2 {
		t.Fatalf("issues = %+v", item.Issues)
	}
	if item.Issues[0].Code != IssueMissingTrackFile || item.Issues[1].Code != IssueInvalidPath {
		t.Fatalf("codes = %s, %s", item.Issues[0].Code, item.Issues[1].Code)
	}
}

func TestInspectCompleteTrackSetIsOK(t *testing.T) {
	dir := t.TempDir()
	cue := filepath.Join(dir, "game.cue")
	writeTestFile(t, cue, "FILE \"A.bin\" BINARY\n")
	writeTestFile(t, filepath.Join(dir, "A.bin"), "x")

	item := Inspect(cue, "psx", nil)
	if item.Status != StatusOK || len(item.Issues) != 0 || item.Action != ActionNone {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestInspectEmptyAndMissingSheets(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.gdi")
	writeTestFile(t, empty, "0\n")

	item := Inspect(empty, "", nil)
	if len(item.Issues) != 1 || item.Issues[0].Code != IssueNoTrackEntries {
		t.Fatalf("issues = %+v", item.Issues)
	}

	missing := Inspect(filepath.Join(dir, "absent.cue"), "", nil)
	if missing.Status != StatusFailed || len(missing.Issues) != 1 || missing.Issues[0].Code != IssueMissingTrackFile {
		t.Fatalf("missing sheet = %+v", missing)
	}
}

func TestInspectFolderSet(t *testing.T) {
	root := t.TempDir()
	formats := []registry.FormatDefinition{{
		PlatformID:        "dos",
		InputKinds:        []inputkind.Kind{inputkind.GameFolderSet},
		RequiredManifests: []string{"dosbox.conf"},
	}}

	item := Inspect(root, "dos", formats)
	if item.InputKind != inputkind.GameFolderSet || item.Status != StatusFailed {
		t.Fatalf("kind=%s status=%s", item.InputKind, item.Status)
	}
	if item.Issues[0].Code != IssueMissingManifest {
		t.Fatalf("code = %s", item.Issues[0].Code)
	}

	writeTestFile(t, filepath.Join(root, "dosbox.conf"), "")
	if item := Inspect(root, "dos", formats); item.Status != StatusOK {
		t.Fatalf("complete folder status = %s", item.Status)
	}
}

func TestInspectPlainFiles(t *testing.T) {
	for path, kind := range map[string]inputkind.Kind{
		"/roms/game.iso":    inputkind.DiscImage,
		"/roms/game.zip":    inputkind.ArchiveSet,
		"/roms/game.sfc":    inputkind.RawRom,
		"/roms/game.tar.gz": inputkind.ArchiveSet,
	} {
		item := Inspect(path, "", nil)
		if item.InputKind != kind || item.Status != StatusOK {
			t.Fatalf("Inspect(%s) = %s/%s", path, item.InputKind, item.Status)
		}
	}
}
