package domain

// RecordStatus is the lifecycle state of an execution record.
type RecordStatus string

const (
	// StatusPending indicates the record is waiting on dependencies.
	StatusPending RecordStatus = "Pending"
	// StatusReady indicates all dependencies succeeded and the record awaits a worker.
	StatusReady RecordStatus = "Ready"
	// StatusRunning indicates the record's tool invocation is in flight.
	StatusRunning RecordStatus = "Running"
	// StatusSucceeded indicates the record completed with all required outputs in place.
	StatusSucceeded RecordStatus = "Succeeded"
	// StatusFailed indicates the record failed or was blocked by a failed dependency.
	StatusFailed RecordStatus = "Failed"
)

// RecordKey is the configuration-qualified identity of an execution record.
// Two requests for the same action under the same tag share one record; this
// is the deduplication the planner exists to deliver.
type RecordKey struct {
	Action InternedString
	Tag    ConfigTag
}

// String renders the key as "action@tag".
func (k RecordKey) String() string {
	return k.Action.String() + "@" + string(k.Tag)
}

// ResolvedOutput is an output path rewritten into the record's
// configuration-qualified output root.
type ResolvedOutput struct {
	Path     string
	Optional bool
}

// ExecutionRecord is the materialized, deduplicated instance of running an
// action under a specific configuration tag. The planner fills in the
// resolved invocation and file sets; the scheduler owns status and results.
type ExecutionRecord struct {
	Key    RecordKey
	Action *Action

	// Deps are the record keys this record waits on.
	Deps []RecordKey

	// Invocation is the fully substituted tool command.
	Invocation Invocation

	// InputPaths are the resolved on-disk paths hashed into the fingerprint.
	InputPaths []string

	// Outputs are the declared outputs under this record's output root.
	Outputs []ResolvedOutput

	Status      RecordStatus
	Fingerprint string
	FromCache   bool
	Err         error
}

// RequiredOutputPaths returns the non-optional resolved output paths.
func (r *ExecutionRecord) RequiredOutputPaths() []string {
	var paths []string
	for _, out := range r.Outputs {
		if !out.Optional {
			paths = append(paths, out.Path)
		}
	}
	return paths
}

// OutputPaths returns all resolved output paths.
func (r *ExecutionRecord) OutputPaths() []string {
	paths := make([]string, len(r.Outputs))
	for i, out := range r.Outputs {
		paths[i] = out.Path
	}
	return paths
}
