package domain

// ProgressRecord maps every attempted task to its last known outcome.
type ProgressRecord map[TaskKey]TaskOutcome

// NewProgressRecord returns an empty record.
func NewProgressRecord() ProgressRecord {
	return make(ProgressRecord)
}

// IsCompleted reports whether key is marked completed.
func (r ProgressRecord) IsCompleted(key TaskKey) bool {
	return r[key] == OutcomeCompleted
}

// CompletedCount returns the number of completed entries.
func (r ProgressRecord) CompletedCount() int {
	n := 0
	for _, v := range r {
		if v == OutcomeCompleted {
			n++
		}
	}
	return n
}

// Clone returns a copy that shares no state with r.
func (r ProgressRecord) Clone() ProgressRecord {
	out := make(ProgressRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RunStats holds the counters of the current run. They are never persisted.
type RunStats struct {
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
	Completed  int `json:"completed"`
	Total      int `json:"total"`
}

// Apply counts a finished task.
func (s *RunStats) Apply(status FetchStatus) {
	switch status {
	case FetchSuccess:
		s.Downloaded++
	case FetchSkipped:
		s.Skipped++
	case FetchFailed:
		s.Failed++
	}
	s.Completed++
}
