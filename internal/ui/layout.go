package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which secondary columns are hidden.
	LayoutCompactWidth = 80

	// ModalWidth is the width of form and confirmation dialogs.
	ModalWidth = 56
)

// Timing constants.
const (
	// OpTimeout bounds a single store operation dispatched from the UI.
	OpTimeout = 15 * time.Second

	// FlashDuration is how long a status message stays in the footer.
	FlashDuration = 4 * time.Second

	// PickerRows is how many candidates a picker field shows.
	PickerRows = 5
)
