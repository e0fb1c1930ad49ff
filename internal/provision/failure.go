package provision

import "fmt"

// FailureKind classifies the terminal failures of a provisioning run. The
// taxonomy is flat; every kind aborts the run.
type FailureKind string

const (
	FailClientNotFound   FailureKind = "client-not-found"
	FailSeedFileMissing  FailureKind = "seed-file-missing"
	FailAuthConnectivity FailureKind = "authentication-or-connectivity"
	FailDatabaseCreation FailureKind = "database-creation"
	FailArtifactWrite    FailureKind = "artifact-write"
)

// ExitCode maps each failure kind to a distinct non-zero process exit code.
func (k FailureKind) ExitCode() int {
	switch k {
	case FailClientNotFound:
		return 2
	case FailSeedFileMissing:
		return 3
	case FailAuthConnectivity:
		return 4
	case FailDatabaseCreation:
		return 5
	case FailArtifactWrite:
		return 6
	default:
		return 1
	}
}

// Failure is the terminal error of a failed run.
type Failure struct {
	Kind FailureKind
	Step string
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", f.Step, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
