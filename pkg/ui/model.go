package ui

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/constellation/internal/datasource"
	"github.com/vanderheijden86/constellation/pkg/config"
	"github.com/vanderheijden86/constellation/pkg/debug"
	"github.com/vanderheijden86/constellation/pkg/graph"
	"github.com/vanderheijden86/constellation/pkg/model"
	"github.com/vanderheijden86/constellation/pkg/watcher"
)

// Side panel sizing
const (
	SidePanelThreshold = 100 // hide the panel below this terminal width
	SidePanelWidth     = 34
	headerRows         = 1
	statusRows         = 1
)

// tickInterval drives the simulation while it is running. Ticking stops
// when every view settles and resumes on the next perturbation.
const tickInterval = 33 * time.Millisecond

// TickMsg advances the active simulation.
type TickMsg time.Time

// FileChangedMsg is sent when a tracked data source file changes on disk.
type FileChangedMsg struct {
	Path    string
	Removed bool
}

// ReadyTimeoutMsg unblocks the UI if the terminal is slow to report its
// size (common in tmux, SSH, some terminal emulators).
type ReadyTimeoutMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// ReadyTimeoutCmd returns a command that sends ReadyTimeoutMsg after 100ms.
func ReadyTimeoutCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return ReadyTimeoutMsg{}
	})
}

// WatchFileCmd returns a command that waits for the next watcher event and
// surfaces it as a FileChangedMsg.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		ev := <-w.Events()
		return FileChangedMsg{Path: ev.Path, Removed: ev.Removed}
	}
}

// ModelParams collects construction inputs for the root Model.
type ModelParams struct {
	Data    *datasource.Dataset
	DataDir string
	Config  config.Config
	Watcher *watcher.Watcher
	// OnDeleteRequested fires when the user asks to remove the selected
	// contact. The storage mutation is up to the host; the UI only
	// surfaces the request.
	OnDeleteRequested func(id string)
	Rand              *rand.Rand
}

// Model is the root bubbletea model: two graph views swapped with tab, a
// side panel for the selection, live reload, and the shared tick loop.
type Model struct {
	data    *datasource.Dataset
	dataDir string
	cfg     config.Config
	watcher *watcher.Watcher
	theme   Theme

	views     [2]*GraphView
	activeTab Variant

	panel      viewport.Model
	panelShown bool

	onDeleteRequested func(string)

	ticking  bool
	ready    bool
	width    int
	height   int
	err      error
	statusMu string // transient status message, cleared on next key
}

// NewModel wires the two graph views and the side panel.
func NewModel(p ModelParams) Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())

	tuning := graph.Tuning{
		RadialGain:  p.Config.Physics.RadialGain,
		LinkGain:    p.Config.Physics.LinkGain,
		RepelRange:  p.Config.Physics.RepelRange,
		RepelMember: p.Config.Physics.RepelMember,
		RepelAnchor: p.Config.Physics.RepelAnchor,
	}

	m := Model{
		data:              p.Data,
		dataDir:           p.DataDir,
		cfg:               p.Config,
		watcher:           p.Watcher,
		theme:             theme,
		onDeleteRequested: p.OnDeleteRequested,
		panel:             viewport.New(SidePanelWidth-2, 10),
	}

	for i, variant := range []Variant{VariantConnections, VariantEmail} {
		v := variant
		m.views[i] = NewGraphView(GraphViewParams{
			Variant:     v,
			Theme:       theme,
			Data:        p.Data,
			Tuning:      tuning,
			SettleTicks: p.Config.Physics.SettleTicks,
			RingMargin:  p.Config.Physics.RingMargin,
			MinZoom:     p.Config.UI.MinZoom,
			MaxZoom:     p.Config.UI.MaxZoom,
			Rand:        p.Rand,
		})
	}
	if p.Config.UI.DefaultView == "email" {
		m.activeTab = VariantEmail
	}

	return m
}

func (m *Model) active() *GraphView {
	return m.views[m.activeTab]
}

// Close tears down both views so buffered ticks become no-ops.
func (m *Model) Close() {
	for _, v := range m.views {
		v.Close()
	}
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ReadyTimeoutCmd()}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		if !m.ticking && m.active().Active() {
			m.ticking = true
			cmds = append(cmds, tickCmd())
		}

	case ReadyTimeoutMsg:
		if !m.ready {
			m.width = 80
			m.height = 24
			m.ready = true
			m.layout()
		}

	case TickMsg:
		m.active().Tick()
		if m.active().Active() {
			cmds = append(cmds, tickCmd())
		} else {
			m.ticking = false
		}
		m.refreshPanel()

	case FileChangedMsg:
		debug.Log("source changed: %s (removed=%v)", msg.Path, msg.Removed)
		cmds = append(cmds, m.reload()...)

	case tea.MouseMsg:
		cmds = append(cmds, m.handleMouse(msg)...)

	case tea.KeyMsg:
		m.statusMu = ""
		switch msg.String() {
		case "ctrl+c", "q":
			m.Close()
			return m, tea.Quit
		case "tab":
			m.switchTab()
			cmds = append(cmds, m.wake()...)
		case "esc", "b":
			m.active().ExitDetail()
			cmds = append(cmds, m.wake()...)
		case "x":
			m.requestDelete()
		case "y":
			m.copySelection()
		case "r":
			cmds = append(cmds, m.reload()...)
		case "0":
			m.active().Camera().Reset()
		}
		m.refreshPanel()
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) layout() {
	m.panelShown = m.width >= SidePanelThreshold
	cols := m.width
	if m.panelShown {
		cols -= SidePanelWidth
	}
	rows := m.height - headerRows - statusRows
	for _, v := range m.views {
		v.SetSize(cols, rows)
	}
	m.panel.Width = SidePanelWidth - 4
	m.panel.Height = rows - 4
	if m.panel.Height < 1 {
		m.panel.Height = 1
	}
	m.refreshPanel()
}

func (m *Model) switchTab() {
	if m.activeTab == VariantConnections {
		m.activeTab = VariantEmail
	} else {
		m.activeTab = VariantConnections
	}
	m.refreshPanel()
}

// wake restarts the tick loop if the active simulation was re-energized.
func (m *Model) wake() []tea.Cmd {
	if !m.ticking && m.active().Active() {
		m.ticking = true
		return []tea.Cmd{tickCmd()}
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) []tea.Cmd {
	// The canvas starts below the header row.
	msg.Y -= headerRows
	if msg.Y < 0 {
		return nil
	}
	m.active().HandleMouse(msg)
	m.refreshPanel()
	return m.wake()
}

// reload re-reads the dataset and rebuilds both views when something
// actually changed. Stored positions keep the layout steady.
func (m *Model) reload() []tea.Cmd {
	var cmds []tea.Cmd
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}

	next, err := datasource.LoadDataset(m.dataDir)
	if err != nil {
		debug.Log("reload failed: %v", err)
		m.statusMu = "reload failed: " + err.Error()
		return cmds
	}
	diff := datasource.Diff(m.data, next)
	if diff.Empty() {
		return cmds
	}
	debug.Log("reload: %s", diff.Summary())
	m.data = next
	for _, v := range m.views {
		v.SetData(next)
	}
	m.statusMu = diff.Summary()
	m.refreshPanel()
	return append(cmds, m.wake()...)
}

func (m *Model) requestDelete() {
	if m.activeTab != VariantConnections || m.onDeleteRequested == nil {
		return
	}
	id := m.active().SelectedID()
	if id == "" {
		return
	}
	m.onDeleteRequested(id)
	m.statusMu = "delete requested: " + id
}

func (m *Model) copySelection() {
	id := m.active().SelectedID()
	if id == "" {
		return
	}
	if err := clipboard.WriteAll(id); err != nil {
		debug.Log("clipboard write failed: %v", err)
		m.statusMu = "clipboard unavailable"
		return
	}
	m.statusMu = "copied " + id
}

// --- view --------------------------------------------------------------------

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	body := m.active().Render()
	if m.panelShown {
		panel := m.renderPanel()
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, panel)
	}

	return strings.Join([]string{m.renderHeader(), body, m.renderStatus()}, "\n")
}

func (m Model) renderHeader() string {
	tabs := make([]string, 0, 2)
	for _, v := range []Variant{VariantConnections, VariantEmail} {
		label := " " + v.String() + " "
		if v == m.activeTab {
			tabs = append(tabs, m.theme.Header.Render(label))
		} else {
			tabs = append(tabs, m.theme.MutedText.Render(label))
		}
	}
	title := m.theme.PrimaryBold.Render("constellation")
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", strings.Join(tabs, " "))
}

func (m Model) renderStatus() string {
	g := m.active()
	parts := []string{g.variant.String()}
	if g.State() == StateDetail {
		parts = append(parts, "detail:"+g.DetailID(), "esc back")
	}
	if g.Sim() != nil {
		parts = append(parts, strings.ToLower(g.Sim().Phase().String()))
		parts = append(parts, fmt.Sprintf("zoom %.2fx", g.Camera().Zoom))
	}
	if m.statusMu != "" {
		parts = append(parts, m.statusMu)
	}
	parts = append(parts, "tab switch · q quit")
	return m.theme.StatusBar.Render(strings.Join(parts, "  |  "))
}

func (m *Model) refreshPanel() {
	if !m.panelShown {
		return
	}
	m.panel.SetContent(m.panelContent())
}

func (m Model) renderPanel() string {
	title := m.theme.PanelTitle.Render("Selection")
	return m.theme.PanelBorder.Render(title + "\n" + m.panel.View())
}

func (m Model) panelContent() string {
	g := m.active()
	id := g.SelectedID()
	if id == "" {
		return m.theme.MutedText.Render("Nothing selected.\n\nClick a node to inspect it.")
	}

	var sb strings.Builder
	switch m.activeTab {
	case VariantEmail:
		if msg := m.emailByID(id); msg != nil {
			sb.WriteString(m.theme.PrimaryBold.Render(truncate(msg.Subject, m.panel.Width)) + "\n\n")
			sb.WriteString(padRight("from:", 10) + msg.From + "\n")
			sb.WriteString(padRight("category:", 10) + msg.CategoryID + "\n")
			urgency := string(msg.Urgency)
			switch msg.Urgency {
			case model.UrgencyHigh:
				urgency = m.theme.UrgentMark.Render(urgency)
			case model.UrgencyLow:
				urgency = m.theme.QuietMark.Render(urgency)
			}
			sb.WriteString(padRight("urgency:", 10) + urgency + "\n")
			break
		}
		sb.WriteString(id + "\n")
	default:
		if c := m.contactByID(id); c != nil {
			sb.WriteString(m.theme.PrimaryBold.Render(c.Name) + "\n\n")
			sb.WriteString(padRight("degree:", 8) + fmt.Sprintf("%d", c.Degree) + "\n")
			sb.WriteString(padRight("tier:", 8) + string(c.Tier) + "\n")
			if c.ParentID != "" {
				sb.WriteString(padRight("via:", 8) + c.ParentID + "\n")
			}
			sb.WriteString(padRight("seen:", 8) + FormatTimeRel(c.LastSeen) + "\n")
			if c.Notes != "" {
				sb.WriteString("\n" + c.Notes + "\n")
			}
			sb.WriteString("\n" + m.theme.MutedText.Render("x delete · y copy id"))
			break
		}
		sb.WriteString(id + "\n")
	}
	return sb.String()
}

func (m Model) contactByID(id string) *model.Contact {
	for i := range m.data.Contacts {
		if m.data.Contacts[i].ID == id {
			return &m.data.Contacts[i]
		}
	}
	return nil
}

func (m Model) emailByID(id string) *model.EmailMessage {
	for i := range m.data.Emails {
		if m.data.Emails[i].ID == id {
			return &m.data.Emails[i]
		}
	}
	return nil
}
