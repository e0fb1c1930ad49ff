// Package wizard implements the interactive `seedctl init` flow that
// scaffolds seedctl.toml.
package wizard

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// New creates a new wizard model.
func New(force bool) Model {
	return Model{
		state: stateWelcome,
		force: force,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateDetails {
				return m, tea.Quit
			}
			return m.handleTextInput(msg)

		case "enter":
			return m.handleEnter()

		case "up", "shift+tab":
			return m.handleUp()

		case "down", "tab":
			return m.handleDown()

		default:
			return m.handleTextInput(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case generationResultMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.result = msg.result
		m.state = stateDone
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	switch m.state {
	case stateWelcome:
		return m.renderWelcome()
	case stateDriverType:
		return m.renderDriverType()
	case stateDetails:
		return m.renderDetails()
	case stateSummary:
		return m.renderSummary()
	case stateDone:
		return m.renderDone()
	case stateError:
		return m.renderError()
	default:
		return "Unknown state"
	}
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateWelcome:
		m.state = stateDriverType
		return m, nil

	case stateDriverType:
		driver := DriverOptions[m.driverIndex]
		m.env.DriverID = driver.ID
		m.setupInputs(driver)
		m.state = stateDetails
		return m, textinput.Blink

	case stateDetails:
		if m.focusIndex < len(m.inputs)-1 {
			return m.handleDown()
		}
		m.collectInputs()
		if m.env.Name == "" || m.env.DatabaseURL == "" {
			return m, nil
		}
		m.state = stateSummary
		return m, nil

	case stateSummary:
		env := m.env
		force := m.force
		return m, func() tea.Msg {
			result, err := GenerateFiles(env, force)
			return generationResultMsg{result: result, err: err}
		}

	case stateDone, stateError:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleUp() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateDriverType:
		if m.driverIndex > 0 {
			m.driverIndex--
		}
	case stateDetails:
		if m.focusIndex > 0 {
			m.inputs[m.focusIndex].Blur()
			m.focusIndex--
			m.inputs[m.focusIndex].Focus()
		}
	}
	return m, nil
}

func (m Model) handleDown() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateDriverType:
		if m.driverIndex < len(DriverOptions)-1 {
			m.driverIndex++
		}
	case stateDetails:
		if m.focusIndex < len(m.inputs)-1 {
			m.inputs[m.focusIndex].Blur()
			m.focusIndex++
			m.inputs[m.focusIndex].Focus()
		}
	}
	return m, nil
}

func (m Model) handleTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state != stateDetails || len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

var detailLabels = []string{
	"Environment name",
	"Database URL",
	"Database name",
	"Seed file path",
	"Output file path",
}

func (m *Model) setupInputs(driver DriverOption) {
	values := []string{"local", driver.DefaultURL, "northwind", "northwind.sql", ".env"}

	m.inputs = make([]textinput.Model, len(values))
	for i, value := range values {
		input := textinput.New()
		input.SetValue(value)
		input.CharLimit = 200
		input.Width = 60
		if i == 0 {
			input.Focus()
		}
		m.inputs[i] = input
	}
	m.focusIndex = 0
}

func (m *Model) collectInputs() {
	get := func(i int) string { return strings.TrimSpace(m.inputs[i].Value()) }
	m.env.Name = get(0)
	m.env.DatabaseURL = get(1)
	m.env.DatabaseName = get(2)
	m.env.SeedPath = get(3)
	m.env.OutputPath = get(4)
}

func (m Model) renderWelcome() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("seedctl init"))
	b.WriteString("\n\nSet up a seedctl.toml describing the database to provision.\n")
	b.WriteString(helpStyle.Render("enter: continue • q: quit"))
	return b.String()
}

func (m Model) renderDriverType() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Database engine"))
	b.WriteString("\n\n")
	for i, driver := range DriverOptions {
		cursor := "  "
		style := unselectedStyle
		if i == m.driverIndex {
			cursor = "> "
			style = selectedStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%s", cursor, driver.Name)))
		b.WriteString(labelStyle.Render("  " + driver.Description))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("up/down: select • enter: continue • q: quit"))
	return b.String()
}

func (m Model) renderDetails() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Environment details"))
	b.WriteString("\n\n")
	for i, input := range m.inputs {
		b.WriteString(labelStyle.Render(detailLabels[i] + ":"))
		b.WriteString("\n")
		b.WriteString(input.View())
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("tab: next field • enter on last field: continue • ctrl+c: quit"))
	return b.String()
}

func (m Model) renderSummary() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Summary"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  Environment:   %s\n", m.env.Name))
	b.WriteString(fmt.Sprintf("  Engine:        %s\n", m.env.DriverID))
	b.WriteString(fmt.Sprintf("  Database URL:  %s\n", m.env.DatabaseURL))
	b.WriteString(fmt.Sprintf("  Database name: %s\n", m.env.DatabaseName))
	b.WriteString(fmt.Sprintf("  Seed file:     %s\n", m.env.SeedPath))
	b.WriteString(fmt.Sprintf("  Output file:   %s\n", m.env.OutputPath))
	b.WriteString(helpStyle.Render("enter: write seedctl.toml • ctrl+c: quit"))
	return b.String()
}

func (m Model) renderDone() string {
	var b strings.Builder
	b.WriteString(successStyle.Render("✓ Configuration written"))
	b.WriteString("\n\n")
	if m.result != nil {
		verb := "Created"
		if m.result.ConfigUpdated {
			verb = "Updated"
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", verb, m.result.ConfigPath))
		if m.result.GitignoreUpdated {
			b.WriteString("  Updated .gitignore\n")
		}
	}
	b.WriteString("\nNext: run 'seedctl provision' to create and seed the database.\n")
	b.WriteString(helpStyle.Render("enter: exit"))
	return b.String()
}

func (m Model) renderError() string {
	var b strings.Builder
	b.WriteString(errorStyle.Render("✗ Failed to write configuration"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString("  " + m.err.Error() + "\n")
	}
	b.WriteString(helpStyle.Render("enter: exit"))
	return b.String()
}

type generationResultMsg struct {
	result *InitResult
	err    error
}

// Run starts the interactive wizard. Without force, an existing seedctl.toml
// aborts before the UI starts.
func Run(force bool) error {
	if !force {
		if _, err := os.Stat("seedctl.toml"); err == nil {
			return fmt.Errorf("seedctl.toml already exists; use --force to overwrite")
		}
	}

	program := tea.NewProgram(New(force))
	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	if m, ok := finalModel.(Model); ok && m.err != nil {
		return m.err
	}
	return nil
}
