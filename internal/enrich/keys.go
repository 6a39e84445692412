package enrich

import "sort"

// UniqueKeys returns every key used across records, in the order each was first
// seen. Keys within one record are visited in sorted order.
func UniqueKeys(records []map[string]any) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, rec := range records {
		local := make([]string, 0, len(rec))
		for k := range rec {
			if !seen[k] {
				local = append(local, k)
			}
		}
		sort.Strings(local)
		for _, k := range local {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}
