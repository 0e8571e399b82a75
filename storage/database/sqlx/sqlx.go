// Package sqlxrepos implements the core repositories on PostgreSQL via sqlx.
package sqlxrepos

import (
	"strconv"
	"strings"

	"github.com/trezcool/baraza/core"
)

func itoa(i int) string { return strconv.Itoa(i) }

// orderBy renders an ORDER BY clause from the requested ordering, keeping
// only whitelisted fields (mapped to their column expressions). Unknown
// fields are dropped; fallback applies when nothing survives. An entry may
// map to several comma-separated columns (tie-breakers); the direction is
// rendered on every one so no column silently reverts to ASC.
func orderBy(ordering []core.DBOrdering, allowed map[string]string, fallback string) string {
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		cols, ok := allowed[ord.Field]
		if !ok {
			continue
		}
		direction := " DESC"
		if ord.Ascending {
			direction = " ASC"
		}
		for _, col := range strings.Split(cols, ",") {
			parts = append(parts, strings.TrimSpace(col)+direction)
		}
	}
	if len(parts) == 0 {
		if fallback == "" {
			return ""
		}
		return " ORDER BY " + fallback
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func limitOffset(p core.Pagination) string {
	return " LIMIT " + itoa(p.Limit()) + " OFFSET " + itoa(p.Offset())
}
