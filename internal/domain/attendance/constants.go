package attendance

// Stored record statuses.
const (
	StatusPresent   = "PRESENT"
	StatusCompleted = "COMPLETED"
)

// Derived day statuses.
const (
	DayNoProfile  = "NO_PROFILE"
	DayNotStarted = "NOT_STARTED"
	DayAbsent     = "ABSENT"
	DayWorking    = "WORKING"
	DayCompleted  = "COMPLETED"
)
