package crinex

// Stats is a purely diagnostic summary of one compression run, collected
// alongside the exit code the way the reference's ObsFile.Meta() gathers
// an ObsMeta while streaming rather than after the fact.
type Stats struct {
	EpochsWritten int
	EpochsSkipped int
	EventRecords  int
	Resets        int
	BytesIn       int64
	BytesOut      int64
}
