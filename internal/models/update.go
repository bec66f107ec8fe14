package models

// JobUpdate is a partial update applied through the repository. Nil/zero
// output fields are left untouched.
type JobUpdate struct {
	JobID    string
	Status   JobStatus
	Progress int

	// Output fields, supplied on the succeeded transition.
	FileName  string
	PublicURL string
	FileSize  int64

	// ErrorMessage, supplied on the failed transition.
	ErrorMessage string
}
