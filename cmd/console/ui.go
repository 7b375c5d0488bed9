package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/nevermore/internal/session"
	"github.com/jwebster45206/nevermore/pkg/campus"
	"github.com/jwebster45206/nevermore/pkg/dialogue"
	"github.com/jwebster45206/nevermore/pkg/router"
	"github.com/jwebster45206/nevermore/pkg/state"
	"github.com/jwebster45206/nevermore/pkg/story"
)

const (
	stepSize      = 20.0
	journalPeek   = 4
	minTrackWidth = 20
)

type step int

const (
	stepName step = iota
	stepHeritage
	stepHair
	stepOutfit
	stepPlay
)

// sessionFactory builds the session once character setup is done.
type sessionFactory func(player story.Player, presenter dialogue.Presenter) (*session.Session, error)

// ConsoleUI is the BubbleTea model that runs the game.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	newSession sessionFactory
	session    *session.Session
	pane       *dialoguePane
	logger     *slog.Logger

	step     step
	name     textinput.Model
	cursor   int
	heritage int
	hair     int
	outfit   int

	journal     viewport.Model
	showJournal bool

	showQuitModal bool
	status        string
	err           error
	width         int
	height        int
}

type clipboardMsg struct {
	err error
}

var (
	panelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(3).
			PaddingRight(1)

	sidePanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	playerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	dormantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	dialogueStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(newSession sessionFactory, playerName string, logger *slog.Logger) ConsoleUI {
	ti := textinput.New()
	ti.Placeholder = state.DefaultPlayerName
	ti.Prompt = promptStyle.Render(":: ")
	ti.CharLimit = state.MaxPlayerNameLen
	ti.Width = 30
	ti.SetValue(playerName)
	ti.Focus()

	jv := viewport.New(60, 20)
	jv.MouseWheelEnabled = true

	return ConsoleUI{
		newSession: newSession,
		pane:       &dialoguePane{},
		logger:     logger,
		name:       ti,
		heritage:   defaultHeritage(),
		journal:    jv,
	}
}

func defaultHeritage() int {
	for i, h := range campus.Heritages() {
		if h.Name == campus.DefaultHeritage {
			return i
		}
	}
	return 0
}

func (m ConsoleUI) Init() tea.Cmd {
	return textinput.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.journal.Width = max(m.width-10, minTrackWidth)
		m.journal.Height = max(m.height-8, 5)
		m.refreshJournal()
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.status = "Clipboard unavailable: " + msg.err.Error()
		} else {
			m.status = "Journal copied to clipboard."
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.showQuitModal = true
			return m, nil
		}
	}

	if m.step == stepPlay {
		return m.updatePlay(msg)
	}
	return m.updateSetup(msg)
}

// Character setup

func (m ConsoleUI) setupChoices() []string {
	switch m.step {
	case stepHeritage:
		hs := campus.Heritages()
		out := make([]string, len(hs))
		for i, h := range hs {
			out[i] = h.Name
		}
		return out
	case stepHair:
		return campus.HairStyles()
	case stepOutfit:
		return campus.Outfits()
	}
	return nil
}

func (m ConsoleUI) updateSetup(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)

	if m.step == stepName {
		if isKey {
			switch key.Type {
			case tea.KeyEnter:
				m.step = stepHeritage
				m.cursor = m.heritage
				return m, nil
			case tea.KeyEsc:
				m.showQuitModal = true
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.name, cmd = m.name.Update(msg)
		return m, cmd
	}

	if !isKey {
		return m, nil
	}

	choices := m.setupChoices()
	switch key.Type {
	case tea.KeyEsc:
		m.step--
		m.cursor = 0
		if m.step == stepHeritage {
			m.cursor = m.heritage
		}
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.cursor < len(choices)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		return m.pick()
	}
	return m, nil
}

func (m ConsoleUI) pick() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepHeritage:
		m.heritage = m.cursor
	case stepHair:
		m.hair = m.cursor
	case stepOutfit:
		m.outfit = m.cursor
		return m.begin()
	}
	m.step++
	m.cursor = 0
	return m, nil
}

func (m ConsoleUI) begin() (tea.Model, tea.Cmd) {
	player := state.NewPlayer(
		m.name.Value(),
		campus.Heritages()[m.heritage].Name,
		campus.HairStyles()[m.hair],
		campus.Outfits()[m.outfit],
	)

	s, err := m.newSession(player, m.pane)
	if err != nil {
		m.logger.Error("Failed to create session", "error", err)
		m.err = err
		return m, nil
	}
	m.session = s
	m.step = stepPlay
	m.name.Blur()

	if err := s.Begin(); err != nil {
		m.err = err
	}
	m.refreshJournal()
	return m, nil
}

// Play

func (m ConsoleUI) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if !isKey {
		if m.showJournal {
			var cmd tea.Cmd
			m.journal, cmd = m.journal.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	m.status = ""

	if m.showJournal {
		switch key.String() {
		case "j", "esc":
			m.showJournal = false
		case "c":
			return m, copyJournal(m.session.Journal())
		default:
			var cmd tea.Cmd
			m.journal, cmd = m.journal.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.session.InDialogue() {
		if err := m.dialogueKey(key); err != nil {
			m.err = err
		}
		m.refreshJournal()
		return m, nil
	}

	switch key.String() {
	case "left", "a":
		m.session.Move(-stepSize)
	case "right", "d":
		m.session.Move(stepSize)
	case "e":
		if _, err := m.session.Interact(); err != nil {
			m.err = err
		}
	case "j":
		m.showJournal = true
		m.refreshJournal()
		m.journal.GotoBottom()
	case "c":
		return m, copyJournal(m.session.Journal())
	case "esc", "q":
		m.showQuitModal = true
	}
	m.refreshJournal()
	return m, nil
}

func (m ConsoleUI) dialogueKey(key tea.KeyMsg) error {
	switch key.String() {
	case "esc":
		return m.session.CloseDialogue()
	case " ", "enter":
		return m.session.Advance()
	}
	if n, err := strconv.Atoi(key.String()); err == nil && n >= 1 && n <= 9 {
		return m.session.Choose(n - 1)
	}
	return nil
}

func (m *ConsoleUI) refreshJournal() {
	if m.session == nil {
		return
	}
	var content strings.Builder
	content.WriteString(titleStyle.Render("JOURNAL") + "\n\n")
	entries := m.session.Journal()
	if len(entries) == 0 {
		content.WriteString(promptStyle.Render("Nothing recorded yet.") + "\n")
	}
	for i, e := range entries {
		content.WriteString(fmt.Sprintf("%2d. %s\n", i+1, wordwrap.String(e, max(m.journal.Width-6, 10))))
	}
	m.journal.SetContent(content.String())
}

func copyJournal(entries []string) tea.Cmd {
	text := strings.Join(entries, "\n")
	return func() tea.Msg {
		return clipboardMsg{err: clipboard.WriteAll(text)}
	}
}

// Quit

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		case tea.KeyEsc:
			m.showQuitModal = false
			return m, nil
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}
	return m, nil
}

// Views

func (m ConsoleUI) View() string {
	if m.width == 0 || m.height == 0 {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.step != stepPlay {
		return m.renderSetup()
	}
	if m.showJournal {
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.journal.View(),
			"",
			promptStyle.Render("↑/↓ scroll • C copy • J or Esc to return"),
			m.renderStatus(),
		))
	}

	mainWidth := int(float64(m.width)*0.7) - 4
	sideWidth := m.width - mainWidth - 6

	world := panelStyle.Width(mainWidth).Render(m.renderWorld(mainWidth - 4))
	side := sidePanelStyle.Width(sideWidth).Render(m.renderSide(sideWidth - 2))
	return lipgloss.JoinHorizontal(lipgloss.Top, world, side)
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave Nevermore?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress is not saved between sessions.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to stay, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderSetup() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Enroll at Nevermore"))
	content.WriteString("\n\n")

	switch m.step {
	case stepName:
		content.WriteString("What name should the registry record?\n\n")
		content.WriteString(m.name.View())
		content.WriteString("\n\n")
		content.WriteString(promptStyle.Render("Enter to continue, Esc to quit"))
	default:
		labels := map[step]string{
			stepHeritage: "Choose your heritage",
			stepHair:     "Choose your hair",
			stepOutfit:   "Choose your outfit",
		}
		content.WriteString(labels[m.step] + "\n\n")
		for i, choice := range m.setupChoices() {
			if i == m.cursor {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", choice)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", choice)))
			}
			content.WriteString("\n")
		}
		if m.step == stepHeritage {
			desc := campus.Heritages()[m.cursor].Description
			content.WriteString("\n" + narratorStyle.Render(wordwrap.String(desc, 50)) + "\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Esc to go back"))
	}

	if m.err != nil {
		content.WriteString("\n\n" + errorStyle.Render("Error: "+m.err.Error()))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderWorld(width int) string {
	width = max(width, minTrackWidth)
	var b strings.Builder

	b.WriteString(titleStyle.Render("NEVERMORE ACADEMY") + "\n\n")
	b.WriteString(m.renderTrack(width) + "\n")
	if prompt := m.session.Prompt(); prompt != "" {
		b.WriteString(statusStyle.Render(prompt))
	}
	b.WriteString("\n\n")

	switch {
	case m.pane.fault != nil:
		b.WriteString(errorStyle.Render(wordwrap.String("The story broke: "+m.pane.fault.Error(), width)))
		b.WriteString("\n\n")
	case m.pane.open:
		b.WriteString(dialogueStyle.Width(width).Render(m.renderDialogue(width - 4)))
		b.WriteString("\n\n")
	case m.session.Concluded():
		b.WriteString(narratorStyle.Render("Semester one has begun. Wander as long as you like."))
		b.WriteString("\n\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	b.WriteString(m.renderStatus())
	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n")
	b.WriteString(promptStyle.Render(m.helpLine()))
	return b.String()
}

// renderTrack draws the courtyard as one line: interactables by initial,
// dimmed while unavailable, and the player as @.
func (m ConsoleUI) renderTrack(width int) string {
	cells := make([]string, width)
	for i := range cells {
		cells[i] = separatorStyle.Render("─")
	}

	col := func(v router.Vec) int {
		return min(max(int(v.X/m.session.WorldWidth()*float64(width-1)), 0), width-1)
	}

	for _, it := range m.session.Interactables() {
		glyph := "?"
		if r := []rune(it.Name); len(r) > 0 {
			glyph = strings.ToUpper(string(r[0]))
		}
		if m.session.Available(it) {
			cells[col(it.Position)] = optionStyle.Render(glyph)
		} else {
			cells[col(it.Position)] = dormantStyle.Render(glyph)
		}
	}
	cells[col(m.session.Position())] = playerStyle.Render("@")
	return strings.Join(cells, "")
}

func (m ConsoleUI) renderDialogue(width int) string {
	f := m.pane.frame
	var b strings.Builder

	if f.Speaker != "" {
		b.WriteString(speakerStyle.Render(f.Speaker+":") + "\n")
	}
	body := wordwrap.String(f.Body, width)
	if f.Broken {
		body = narratorStyle.Render(body)
	}
	b.WriteString(body)

	if f.HasOptions() {
		b.WriteString("\n")
		for _, opt := range f.Options {
			line := fmt.Sprintf("%d. %s", opt.Hotkey(), opt.Label)
			b.WriteString("\n" + optionStyle.Render(wordwrap.String(line, width)))
		}
	}
	return b.String()
}

func (m ConsoleUI) renderSide(width int) string {
	var b strings.Builder
	p := m.session.Player()

	b.WriteString(titleStyle.Render(p.Name) + "\n")
	b.WriteString(promptStyle.Render(wordwrap.String(fmt.Sprintf("%s • %s • %s", p.Heritage, p.Hair, p.Outfit), width)) + "\n\n")

	b.WriteString(titleStyle.Render("GOAL") + "\n")
	goal := m.session.Goal()
	if goal == "" {
		goal = "Listen to the Headmistress."
	}
	b.WriteString(wordwrap.String(goal, width) + "\n\n")

	b.WriteString(titleStyle.Render("RECENT JOURNAL") + "\n")
	recent := m.session.RecentJournal(journalPeek)
	if len(recent) == 0 {
		b.WriteString(promptStyle.Render("Nothing recorded yet.") + "\n")
	}
	for _, e := range recent {
		b.WriteString(wordwrap.String("• "+e, width) + "\n")
	}
	return b.String()
}

func (m ConsoleUI) renderStatus() string {
	if m.status == "" {
		return ""
	}
	return statusStyle.Render(m.status) + "\n"
}

func (m ConsoleUI) helpLine() string {
	switch {
	case m.pane.open && m.pane.frame.HasOptions():
		return fmt.Sprintf("1-%d choose • Esc close", len(m.pane.frame.Options))
	case m.pane.open:
		return "Space/Enter continue • Esc close"
	default:
		return "←/→ move • E interact • J journal • C copy journal • Q quit"
	}
}
