package performance

// Appraisal stages. Transitions are strictly forward:
// PENDING_SELF, then PENDING_MANAGER, then COMPLETED.
const (
	StatusPendingSelf    = "PENDING_SELF"
	StatusPendingManager = "PENDING_MANAGER"
	StatusCompleted      = "COMPLETED"
)

const (
	MinRating = 1
	MaxRating = 5
)
