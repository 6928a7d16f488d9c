package repository

import (
	"encoding/json"
	"sort"

	"gorm.io/datatypes"
)

// MergeTagValues flattens raw TAGS column payloads into a deduplicated,
// lexicographically sorted tag list. Tags are plain strings chosen by the
// user, not ids into a fixed vocabulary; payloads that are not string
// arrays are skipped rather than rejected, matching the permissive value
// store.
func MergeTagValues(values []datatypes.JSON) []string {
	seen := make(map[string]struct{})
	for _, raw := range values {
		var tags []string
		if err := json.Unmarshal(raw, &tags); err != nil {
			continue
		}
		for _, tag := range tags {
			if tag == "" {
				continue
			}
			seen[tag] = struct{}{}
		}
	}

	merged := make([]string, 0, len(seen))
	for tag := range seen {
		merged = append(merged, tag)
	}
	sort.Strings(merged)
	return merged
}
