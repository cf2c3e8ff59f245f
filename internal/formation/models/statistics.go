package models

// Statistics is the aggregate view over non-deleted applications.
type Statistics struct {
	Total              int64
	Today              int64
	Pending            int64
	CompletedThisMonth int64
	ByStatus           map[Status]int64
}

// NewStatistics returns Statistics with every status present in ByStatus.
func NewStatistics() *Statistics {
	byStatus := make(map[Status]int64, len(allowedTransitions))
	for _, s := range AllStatuses() {
		byStatus[s] = 0
	}
	return &Statistics{ByStatus: byStatus}
}
