package wizard

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestWizardStartsAtWelcome(t *testing.T) {
	t.Parallel()

	m := New(false)
	if m.state != stateWelcome {
		t.Fatalf("Expected welcome state, got %v", m.state)
	}
	if !strings.Contains(m.View(), "seedctl init") {
		t.Fatal("Expected welcome view to mention seedctl init")
	}
}

func TestWizardEnterAdvancesToDriverSelection(t *testing.T) {
	t.Parallel()

	m := New(false)
	next, _ := m.Update(keyMsg("enter"))
	model := next.(Model)
	if model.state != stateDriverType {
		t.Fatalf("Expected driver selection state, got %v", model.state)
	}
	if !strings.Contains(model.View(), "PostgreSQL") {
		t.Fatal("Expected PostgreSQL option in driver view")
	}
}

func TestWizardDriverSelectionMoves(t *testing.T) {
	t.Parallel()

	m := New(false)
	next, _ := m.Update(keyMsg("enter"))
	next, _ = next.(Model).Update(keyMsg("down"))
	model := next.(Model)
	if model.driverIndex != 1 {
		t.Fatalf("Expected driver index 1 after down, got %d", model.driverIndex)
	}

	next, _ = model.Update(keyMsg("up"))
	model = next.(Model)
	if model.driverIndex != 0 {
		t.Fatalf("Expected driver index 0 after up, got %d", model.driverIndex)
	}
}

func TestWizardDetailsPrefilledFromDriver(t *testing.T) {
	t.Parallel()

	m := New(false)
	next, _ := m.Update(keyMsg("enter"))
	next, _ = next.(Model).Update(keyMsg("enter"))
	model := next.(Model)

	if model.state != stateDetails {
		t.Fatalf("Expected details state, got %v", model.state)
	}
	if len(model.inputs) != len(detailLabels) {
		t.Fatalf("Expected %d inputs, got %d", len(detailLabels), len(model.inputs))
	}
	if model.inputs[1].Value() != DriverOptions[0].DefaultURL {
		t.Fatalf("Expected default postgres URL prefilled, got %q", model.inputs[1].Value())
	}
	if model.inputs[2].Value() != "northwind" {
		t.Fatalf("Expected default database name, got %q", model.inputs[2].Value())
	}
}

func TestWizardReachesSummary(t *testing.T) {
	t.Parallel()

	m := New(false)
	var model tea.Model = m
	// welcome -> drivers -> details
	model, _ = model.(Model).Update(keyMsg("enter"))
	model, _ = model.(Model).Update(keyMsg("enter"))

	// Accept each prefilled field.
	for i := 0; i < len(detailLabels); i++ {
		model, _ = model.(Model).Update(keyMsg("enter"))
	}

	final := model.(Model)
	if final.state != stateSummary {
		t.Fatalf("Expected summary state, got %v", final.state)
	}
	if final.env.DatabaseName != "northwind" {
		t.Fatalf("Expected collected database name, got %q", final.env.DatabaseName)
	}
	if !strings.Contains(final.View(), "northwind.sql") {
		t.Fatal("Expected seed path in summary view")
	}
}

func TestWizardGenerationErrorShowsErrorState(t *testing.T) {
	t.Parallel()

	m := New(false)
	next, _ := m.Update(generationResultMsg{err: errTest})
	model := next.(Model)
	if model.state != stateError {
		t.Fatalf("Expected error state, got %v", model.state)
	}
	if !strings.Contains(model.View(), "Failed to write") {
		t.Fatal("Expected error view")
	}
}

var errTest = &testError{}

type testError struct{}

func (*testError) Error() string { return "boom" }
