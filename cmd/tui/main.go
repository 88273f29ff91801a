package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"seqpipe/internal/pipeline"
)

// Colors for modern design
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	surfaceColor   = lipgloss.Color("#1F2937") // Dark gray
	textColor      = lipgloss.Color("#F3F4F6") // Light gray
	mutedColor     = lipgloss.Color("#9CA3AF") // Muted gray
	borderColor    = lipgloss.Color("#374151") // Border gray
)

// Styles
var (
	containerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Align(lipgloss.Center)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor).
			Padding(0, 1)

	sequenceStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(lipgloss.Color("#111827")).
			Padding(1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)
	// Source styles
	sourceCDSStyle  = lipgloss.NewStyle().Foreground(secondaryColor).Bold(true)
	sourceNCBIStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	sourceORFStyle  = lipgloss.NewStyle().Foreground(mutedColor)
)

type listItem struct {
	analysis pipeline.Analysis
}

func (i listItem) FilterValue() string {
	return i.analysis.Input
}

func (i listItem) Title() string {
	if i.analysis.Record != nil && i.analysis.Record.Accession != "" {
		return i.analysis.Record.Accession
	}
	return i.analysis.Input
}

func (i listItem) Description() string {
	// Metadata line shown below the title in the selector list
	peptides := 0
	if i.analysis.Peptides != nil {
		peptides = len(i.analysis.Peptides.Fragments)
	}
	return fmt.Sprintf("Candidates: %d    Precursor: %d aa    Peptides: %d",
		len(i.analysis.Candidates), len(i.analysis.Precursor), peptides)
}

type mode int

const (
	modeCandidates mode = iota
	modePeptides
	modeStructure
)

func (m mode) String() string {
	switch m {
	case modeCandidates:
		return "Candidates"
	case modePeptides:
		return "Peptides"
	case modeStructure:
		return "Structure"
	default:
		return "Unknown"
	}
}

type model struct {
	list          list.Model
	analyses      []pipeline.Analysis
	currentMode   mode
	showHelp      bool
	width         int
	height        int
	totalRecords  int
	selectedIndex int
}

// newModel builds the model from already-decoded analyses so tests can
// construct one without touching disk.
func newModel(analyses []pipeline.Analysis) model {
	items := make([]list.Item, len(analyses))
	for i, a := range analyses {
		items[i] = listItem{analysis: a}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Analyses"
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(true)

	return model{
		list:         l,
		analyses:     analyses,
		currentMode:  modeCandidates,
		totalRecords: len(analyses),
	}
}

func initialModel() model {
	data, err := os.ReadFile("database.json")
	if err != nil {
		log.Fatal(err)
	}

	var analyses []pipeline.Analysis
	if err := json.Unmarshal(data, &analyses); err != nil {
		log.Fatal(err)
	}

	return newModel(analyses)
}

// cycleMode advances to the next view mode, wrapping around.
func (m model) cycleMode() model {
	m.currentMode = (m.currentMode + 1) % 3
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// left panel takes 1/3 of width
		listWidth := msg.Width / 3
		listHeight := msg.Height - 4

		m.list.SetWidth(listWidth)
		m.list.SetHeight(listHeight)

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "h":
			m.showHelp = !m.showHelp
			return m, nil

		case "tab":
			return m.cycleMode(), nil

		case "1":
			m.currentMode = modeCandidates
			return m, nil

		case "2":
			m.currentMode = modePeptides
			return m, nil

		case "3":
			m.currentMode = modeStructure
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.selectedIndex = m.list.Index()
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelpModal()
	}

	leftPanel := m.renderLeftPanel()
	rightPanel := m.renderRightPanel()
	statusBar := m.renderStatusBar()

	main := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftPanel,
		rightPanel,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		main,
		statusBar,
	)
}

func (m model) renderLeftPanel() string {
	listWidth := m.width / 3

	return containerStyle.
		Width(listWidth - 2).
		Height(m.height - 4).
		Render(m.list.View())
}

func (m model) renderRightPanel() string {
	rightWidth := (m.width * 2) / 3

	if len(m.analyses) == 0 {
		return containerStyle.
			Width(rightWidth - 2).
			Height(m.height - 4).
			Render("No analyses available")
	}

	selectedItem := m.list.SelectedItem()
	if selectedItem == nil {
		return containerStyle.
			Width(rightWidth - 2).
			Height(m.height - 4).
			Render("No item selected")
	}

	a := selectedItem.(listItem).analysis
	lines := m.buildRightLines(a)

	header := titleStyle.Render(a.Input)
	panelContent := lipgloss.JoinVertical(
		lipgloss.Left,
		append([]string{header, ""}, lines...)...,
	)

	return containerStyle.
		Width(rightWidth - 2).
		Height(m.height - 4).
		Render(panelContent)
}

// buildRightLines renders the detail panel body for one analysis in the
// current mode.
func (m model) buildRightLines(a pipeline.Analysis) []string {
	var lines []string
	switch m.currentMode {
	case modeCandidates:
		if len(a.Candidates) == 0 {
			return []string{mutedLine("No candidates")}
		}
		for _, c := range a.Candidates {
			var srcStyle lipgloss.Style
			switch string(c.SourceKind) {
			case "cds_translation":
				srcStyle = sourceCDSStyle
			case "ncbi_translation":
				srcStyle = sourceNCBIStyle
			default:
				srcStyle = sourceORFStyle
			}
			lines = append(lines, fmt.Sprintf("%s  score %d  %s  %s",
				c.ID, c.Score, srcStyle.Render(string(c.SourceKind)), c.Label))
			lines = append(lines, m.formatSequence(c.Sequence))
		}
	case modePeptides:
		if a.Peptides == nil || len(a.Peptides.Fragments) == 0 {
			return []string{mutedLine("No mature peptides")}
		}
		for _, s := range a.Peptides.Sites {
			lines = append(lines, fmt.Sprintf("cleavage %s at %d-%d", s.Motif, s.Start, s.End))
		}
		for _, f := range a.Peptides.Fragments {
			lines = append(lines, fmt.Sprintf("%d-%d (%d aa)", f.Start, f.End, f.Length))
			lines = append(lines, m.formatSequence(f.Sequence))
		}
	case modeStructure:
		if a.Structure == nil {
			return []string{mutedLine("No structure attached")}
		}
		s := a.Structure
		lines = append(lines, "Title: "+s.Title)
		if s.Organism != "" {
			lines = append(lines, "Organism: "+s.Organism)
		}
		if s.Method != "" {
			lines = append(lines, "Method: "+s.Method)
		}
		if s.Resolution != nil {
			lines = append(lines, fmt.Sprintf("Resolution: %.2f A", *s.Resolution))
		}
		lines = append(lines, fmt.Sprintf("Chains: %d", s.ChainCount))
		if c := a.Confidence; c != nil {
			lines = append(lines, "")
			lines = append(lines, fmt.Sprintf("pLDDT mean %.1f (min %.1f, max %.1f) over %d residues",
				c.Mean, c.Min, c.Max, c.ResidueCount))
			lines = append(lines, fmt.Sprintf("very high %d / confident %d / low %d / very low %d",
				c.VeryHigh, c.Confident, c.Low, c.VeryLow))
		}
	}
	return lines
}

func mutedLine(s string) string {
	return lipgloss.NewStyle().Foreground(mutedColor).Render(s)
}

func (m model) formatSequence(sequence string) string {
	if sequence == "" {
		return mutedLine("No sequence available")
	}

	cleanSequence := strings.ReplaceAll(sequence, "\n", "")
	cleanSequence = strings.ReplaceAll(cleanSequence, "\r", "")

	width := m.width*2/3 - 6
	if width < 10 {
		width = 10
	}
	return sequenceStyle.
		Width(width).
		Render(cleanSequence)
}

func (m model) renderStatusBar() string {
	leftInfo := fmt.Sprintf("%d/%d analyses", m.selectedIndex+1, m.totalRecords)
	centerInfo := fmt.Sprintf("Mode: %s", m.currentMode.String())
	rightInfo := "Press 'h' for help, 'q' to quit"

	totalUsed := len(leftInfo) + len(centerInfo) + len(rightInfo)
	spacing := m.width - totalUsed - 6

	var statusContent string
	if spacing > 0 {
		leftSpacing := spacing / 2
		rightSpacing := spacing - leftSpacing

		statusContent = fmt.Sprintf("%s%s%s%s%s",
			leftInfo,
			strings.Repeat(" ", leftSpacing),
			centerInfo,
			strings.Repeat(" ", rightSpacing),
			rightInfo,
		)
	} else {
		// Fallback for narrow terminals
		statusContent = fmt.Sprintf("%s | %s", leftInfo, centerInfo)
	}

	return statusBarStyle.
		Width(m.width).
		Render(statusContent)
}

func (m model) renderHelpModal() string {
	helpContent := `Analysis Browser - Help

Navigation:
  up/down, j/k Navigate list
  /            Filter analyses
  Enter        Select analysis

View Modes:
  Tab          Cycle view mode
  1            Show ranked candidates
  2            Show mature peptides
  3            Show structure and confidence

General:
  h            Toggle this help
  q, Ctrl+C    Quit application

Current Mode: ` + m.currentMode.String() + `
Total Analyses: ` + fmt.Sprintf("%d", m.totalRecords) + `
`

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(1, 2).
		Background(surfaceColor).
		Foreground(textColor).
		Width(60).
		Align(lipgloss.Center)

	modal := modalStyle.Render(helpContent)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
	)
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}
