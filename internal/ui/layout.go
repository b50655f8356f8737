package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the header drops the
	// query summary.
	LayoutCompactWidth = 100

	// MinColumnWidth is the narrowest a table column is rendered.
	MinColumnWidth = 8
)

// Chrome heights subtracted from the terminal height to size the table.
const (
	headerHeight = 1
	footerHeight = 2
)

// Timing constants.
const (
	// SaveTimeout bounds a single record write.
	SaveTimeout = 10 * time.Second

	// NoticeLifetime is how long a footer notice stays visible.
	NoticeLifetime = 8 * time.Second
)

// NewIdentifier is the edit target that creates a record instead of
// updating one.
const NewIdentifier = "NEW"
