package registry_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"romnorm/internal/inputkind"
	"romnorm/internal/registry"
)

const formatsYAML = `version: "1.0"
formats:
  - platform_id: ps2
    format_id: ps2-disc
    input_kinds: [disc_image, disc_track_set]
    preferred_outputs: [.chd, .iso]
  - platform_id: psp
    format_id: psp-umd
    input_kinds: [disc_image]
    preferred_outputs: [cso, chd]
  - platform_id: dos
    format_id: dos-folder
    input_kinds: [game_folder_set]
    required_manifests: ["*.exe", dosbox.conf]
`

func writeFormats(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "platform_formats.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestFormatRegistryLoad(t *testing.T) {
	for _, mode := range []string{"schema", "structural"} {
		t.Run(mode, func(t *testing.T) {
			v, err := registry.NewValidator(mode)
			if err != nil {
				t.Fatalf("NewValidator: %v", err)
			}
			defs, err := registry.NewFormatRegistry(writeFormats(t, formatsYAML), v).Load(context.Background())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(defs) != 3 {
				t.Fatalf("expected 3 formats, got %d", len(defs))
			}
			if !reflect.DeepEqual(defs[1].PreferredOutputs, []string{".cso", ".chd"}) {
				t.Fatalf("preferred outputs = %v", defs[1].PreferredOutputs)
			}
			if !reflect.DeepEqual(defs[2].RequiredManifests, []string{"*.exe", "dosbox.conf"}) {
				t.Fatalf("manifests = %v", defs[2].RequiredManifests)
			}
		})
	}
}

func TestFormatRegistryMissingIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	defs, err := registry.NewFormatRegistry(path, registry.NewStructuralValidator()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(defs) != 0 {
		t.Fatalf("expected empty list, got %d", len(defs))
	}
}

func TestFormatRegistryInvalidFailsClosed(t *testing.T) {
	body := "formats:\n  - platform_id: ps2\n    input_kinds: [disc_image]\n"
	for _, mode := range []string{"schema", "structural"} {
		t.Run(mode, func(t *testing.T) {
			v, err := registry.NewValidator(mode)
			if err != nil {
				t.Fatalf("NewValidator: %v", err)
			}
			defs, err := registry.NewFormatRegistry(writeFormats(t, body), v).Load(context.Background())
			if !errors.Is(err, registry.ErrInvalidDocument) {
				t.Fatalf("expected ErrInvalidDocument, got %v", err)
			}
			if len(defs) != 0 {
				t.Fatalf("expected empty list, got %d", len(defs))
			}
		})
	}
}

func TestPreferredOutputs(t *testing.T) {
	formats := []registry.FormatDefinition{
		{PlatformID: "ps2", InputKinds: []inputkind.Kind{inputkind.DiscImage}, PreferredOutputs: []string{".chd"}},
		{PlatformID: "ps2", InputKinds: []inputkind.Kind{inputkind.DiscTrackSet}, PreferredOutputs: []string{".bin"}},
		{PlatformID: "psp", InputKinds: []inputkind.Kind{inputkind.DiscImage}, PreferredOutputs: []string{".cso"}},
	}
	tests := []struct {
		name     string
		platform string
		kind     inputkind.Kind
		want     []string
	}{
		{"kind match", "ps2", inputkind.DiscTrackSet, []string{".bin"}},
		{"case insensitive platform", "PS2", inputkind.DiscImage, []string{".chd"}},
		{"fallback to first format", "psp", inputkind.RawRom, []string{".cso"}},
		{"unknown platform", "snes", inputkind.RawRom, nil},
		{"empty platform", "", inputkind.DiscImage, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := registry.PreferredOutputs(formats, tt.platform, tt.kind)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("PreferredOutputs = %v, want %v", got, tt.want)
			}
		})
	}
}
