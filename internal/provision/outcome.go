package provision

// StepResult records one completed step of a run.
type StepResult struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	Diagnostic string `json:"diagnostic,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// Outcome is the terminal aggregate of a provisioning run.
type Outcome struct {
	Success       bool         `json:"success"`
	FailedStep    string       `json:"failed_step,omitempty"`
	FailureKind   FailureKind  `json:"failure_kind,omitempty"`
	Diagnostic    string       `json:"diagnostic,omitempty"`
	TableCount    int          `json:"table_count"`
	ServerVersion string       `json:"server_version,omitempty"`
	ArtifactPath  string       `json:"artifact_path,omitempty"`
	Warnings      []string     `json:"warnings,omitempty"`
	Steps         []StepResult `json:"steps"`
}

// ExitCode returns the process exit code for this outcome.
func (o Outcome) ExitCode() int {
	if o.Success {
		return 0
	}
	return o.FailureKind.ExitCode()
}
