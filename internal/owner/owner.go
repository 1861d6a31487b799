// Package owner infers submission-owner identities from archive entry paths.
//
// The inference rule is deliberately fixed rather than configurable: if the
// file's own stem looks like a generic submission name ("project", "untitled",
// ...) and the entry sits inside a folder that is not itself a generic
// container label ("images", "src", ...), the folder names the owner;
// otherwise the file stem does. Collisions within one batch are disambiguated
// with an incrementing numeric suffix, never silently merged.
package owner

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// genericStems are case-insensitive substrings marking a file stem as a
// generic submission name carrying no owner information.
var genericStems = []string{
	"assignment",
	"project",
	"untitled",
	"game",
	"activity",
	"scratch",
	"final",
	"copy",
}

// containerLabels are folder names that group files by kind rather than by
// owner; they never become identities.
var containerLabels = map[string]struct{}{
	"images":      {},
	"image":       {},
	"sounds":      {},
	"sound":       {},
	"assets":      {},
	"asset":       {},
	"src":         {},
	"files":       {},
	"submissions": {},
	"submission":  {},
	"upload":      {},
	"uploads":     {},
}

var titleCaser = cases.Title(language.Und)

// Resolve maps an entry path to an owner identity. It is pure: collision
// handling lives in BatchState.
func Resolve(entryPath string) string {
	segments := splitPath(entryPath)
	if len(segments) == 0 {
		return "Unknown"
	}

	base := segments[len(segments)-1]
	stem := strings.TrimSuffix(base, path.Ext(base))

	if isGenericStem(stem) && len(segments) > 1 {
		parent := segments[len(segments)-2]
		if !isContainerLabel(parent) {
			return displayName(parent)
		}
	}
	return displayName(stem)
}

func splitPath(entryPath string) []string {
	normalized := strings.ReplaceAll(entryPath, "\\", "/")
	raw := strings.Split(normalized, "/")
	segments := make([]string, 0, len(raw))
	for _, seg := range raw {
		seg = strings.TrimSpace(seg)
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		if strings.HasPrefix(seg, ".") || strings.HasPrefix(seg, "~") {
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}

func isGenericStem(stem string) bool {
	lowered := strings.ToLower(stem)
	for _, generic := range genericStems {
		if strings.Contains(lowered, generic) {
			return true
		}
	}
	return false
}

func isContainerLabel(segment string) bool {
	_, ok := containerLabels[strings.ToLower(strings.TrimSpace(segment))]
	return ok
}

// displayName normalizes separators to spaces, collapses runs of whitespace,
// and title-cases the result.
func displayName(value string) string {
	var b strings.Builder
	prevSpace := false
	for _, r := range value {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			if !prevSpace {
				b.WriteRune(' ')
				prevSpace = true
			}
		default:
			b.WriteRune(r)
			prevSpace = false
		}
	}
	name := strings.TrimSpace(b.String())
	if name == "" {
		return "Unknown"
	}
	return titleCaser.String(name)
}
