package wizard

import (
	"github.com/charmbracelet/bubbles/textinput"
)

// wizardState tracks which screen is showing
type wizardState int

const (
	stateWelcome wizardState = iota
	stateDriverType
	stateDetails
	stateSummary
	stateDone
	stateError
)

// DriverOption is a selectable database engine.
type DriverOption struct {
	ID          string
	Name        string
	Description string
	DefaultURL  string
}

// DriverOptions lists the supported engines in display order.
var DriverOptions = []DriverOption{
	{
		ID:          "postgres",
		Name:        "PostgreSQL",
		Description: "Local or remote PostgreSQL server",
		DefaultURL:  "postgres://postgres@localhost:5432/postgres?sslmode=disable",
	},
	{
		ID:          "sqlite",
		Name:        "SQLite",
		Description: "File databases in a local directory",
		DefaultURL:  "sqlite://./data",
	},
	{
		ID:          "libsql",
		Name:        "libSQL",
		Description: "Remote libSQL / Turso database",
		DefaultURL:  "libsql://your-db.turso.io",
	},
}

// EnvironmentInput collects the answers for one environment.
type EnvironmentInput struct {
	Name         string
	DriverID     string
	DatabaseURL  string
	DatabaseName string
	SeedPath     string
	OutputPath   string
}

// InitResult reports what the wizard created.
type InitResult struct {
	ConfigPath       string
	ConfigCreated    bool
	ConfigUpdated    bool
	GitignoreUpdated bool
}

// Model is the bubbletea model for the init wizard.
type Model struct {
	state       wizardState
	force       bool
	driverIndex int

	inputs     []textinput.Model
	focusIndex int

	env    EnvironmentInput
	result *InitResult
	err    error

	width  int
	height int
}
