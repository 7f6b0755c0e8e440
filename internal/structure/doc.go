// Package structure checks that multi-file inputs are complete on disk.
//
// TrackSet inspects CUE and GDI sheets and reports every referenced track
// file that is missing or names an unsafe path. FolderSet checks a game
// folder against the manifests required by the platform format registry.
// Both return plain descriptor strings; an empty result means the input is
// structurally complete.
package structure
