package normalize

import (
	"fmt"

	"romnorm/internal/inputkind"
	"romnorm/internal/registry"
	"romnorm/internal/structure"
)

// Inspect classifies path and validates the structure of track sheets and
// game folders. Every problem found becomes an Issue and fails the item.
func Inspect(path, platformID string, formats []registry.FormatDefinition) Item {
	kind := inputkind.Classify(path)
	item := NewItem(path, kind, platformID)

	switch kind {
	case inputkind.DiscTrackSet:
		entries := structure.TrackSet(path)
		if len(entries) == 1 && entries[0] == path {
			return item.WithIssues(Issue{
				Code:    IssueMissingTrackFile,
				Message: fmt.Sprintf("track sheet %s not found", path),
			})
		}
		issues := make([]Issue, 0, len(entries))
		for _, entry := range entries {
			issues = append(issues, trackIssue(entry))
		}
		return item.WithIssues(issues...)
	case inputkind.GameFolderSet:
		missing := structure.FolderSet(path, platformID, formats)
		issues := make([]Issue, 0, len(missing))
		for _, manifest := range missing {
			issues = append(issues, Issue{
				Code:    IssueMissingManifest,
				Message: fmt.Sprintf("required manifest %s missing", manifest),
			})
		}
		return item.WithIssues(issues...)
	default:
		return item
	}
}

func trackIssue(entry string) Issue {
	name, tag := structure.SplitTag(entry)
	switch tag {
	case structure.TagInvalidPath:
		return Issue{Code: IssueInvalidPath, Message: fmt.Sprintf("track reference %q is not a safe relative path", name)}
	case structure.TagNoTrackEntries:
		return Issue{Code: IssueNoTrackEntries, Message: fmt.Sprintf("%s lists no track files", name)}
	default:
		return Issue{Code: IssueMissingTrackFile, Message: fmt.Sprintf("track file %s missing", name)}
	}
}
