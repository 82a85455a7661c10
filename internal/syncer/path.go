package syncer

import (
	"fmt"
	"strings"
)

// SplitEntryPath decomposes "group/subgroup/Title" into the group path and
// the final title segment. Empty segments (doubled or leading slashes) are
// dropped; a path with no segments at all is an error.
func SplitEntryPath(entryPath string) (groupPath []string, title string, err error) {
	var segments []string
	for _, seg := range strings.Split(entryPath, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return nil, "", fmt.Errorf("empty entry path %q", entryPath)
	}
	return segments[:len(segments)-1], segments[len(segments)-1], nil
}
