// Package tui provides a Bubble Tea terminal user interface for scratch-downloader.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/scratchkit/scratch-downloader/internal/archive"
	"github.com/scratchkit/scratch-downloader/internal/config"
	"github.com/scratchkit/scratch-downloader/internal/download"
	httpx "github.com/scratchkit/scratch-downloader/internal/http"
	"github.com/scratchkit/scratch-downloader/internal/model"
	"github.com/scratchkit/scratch-downloader/internal/scratch"
	"github.com/scratchkit/scratch-downloader/internal/session"
	"github.com/scratchkit/scratch-downloader/internal/sink"
	"github.com/scratchkit/scratch-downloader/internal/source"
	"github.com/scratchkit/scratch-downloader/internal/telemetry"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateRunning
	StateComplete
	StateError
)

// Input field indices.
const (
	inputStartID = iota
	inputAmount
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// run bundles everything a live download session needs.
type run struct {
	session  *session.Session
	recorder *sink.SessionRecorder
	manager  *download.Manager
	stopper  *download.Stopper
	events   chan download.ProgressEvent
	logFile  *os.File
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	inputs   []textinput.Model
	focus    int
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	logs     []LogEntry
	err      error

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	// Active session
	run *run

	// Download progress
	snapshot download.Progress
	summary  sink.Summary

	// Options
	useTor   bool
	verbose  bool
	stopping bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel() Model {
	start := textinput.New()
	start.Placeholder = "blank for explore, \"random\" for a random start"
	start.Focus()
	start.CharLimit = 20
	start.Width = 48

	amount := textinput.New()
	amount.Placeholder = "0 for unlimited"
	amount.CharLimit = 12
	amount.Width = 48

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	settings := config.DefaultSettings()

	return Model{
		state:    StateInput,
		inputs:   []textinput.Model{start, amount},
		spinner:  sp,
		progress: prog,
		settings: settings,
		logs:     make([]LogEntry, 0),
		useTor:   settings.UseTor,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent when download progress updates.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// RunReadyMsg is sent when session setup completes.
	RunReadyMsg struct {
		Run *run
		Err error
	}

	// RunDoneMsg is sent when the session finishes.
	RunDoneMsg struct {
		Summary sink.Summary
		Err     error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateRunning && m.run != nil && !m.stopping {
				// Cooperative stop: in-flight downloads finish and are
				// recorded before the session ends.
				m.stopping = true
				m.run.stopper.Stop()
			}

		case "enter":
			if m.state == StateInput {
				m.state = StateRunning
				return m, tea.Batch(m.setupRun(), m.spinner.Tick)
			}

		case "tab", "down":
			if m.state == StateInput {
				m.setFocus((m.focus + 1) % len(m.inputs))
			}

		case "shift+tab", "up":
			if m.state == StateInput {
				m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
			}

		case "t":
			if m.state == StateInput {
				m.useTor = !m.useTor
			}

		case "v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new session
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.run = nil
				m.snapshot = download.Progress{}
				m.summary = sink.Summary{}
				m.stopping = false
				m.ctx, m.cancel = context.WithCancel(context.Background())
				for i := range m.inputs {
					m.inputs[i].SetValue("")
				}
				m.setFocus(inputStartID)
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			if m.run != nil {
				cmds = append(cmds, listenEvents(m.run.events))
			}
			return m, tea.Batch(cmds...)
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		// Keep only last 10 logs
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}
		if m.run != nil {
			cmds = append(cmds, listenEvents(m.run.events))
		}

	case RunReadyMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.run = msg.Run
			// Start the session, the event listener and the progress tick
			cmds = append(cmds, m.startRun(), listenEvents(m.run.events), m.tickProgress())
		}

	case RunDoneMsg:
		m.summary = msg.Summary
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		// Update progress from manager
		if m.run != nil && m.state == StateRunning {
			m.snapshot = m.run.manager.GetProgress()

			// Animate the bar only for bounded sessions
			if m.snapshot.Target > 0 {
				percent := float64(m.snapshot.Succeeded) / float64(m.snapshot.Target)
				cmds = append(cmds, m.progress.SetPercent(percent))
			}
			cmds = append(cmds, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text inputs
	if m.state == StateInput {
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// setFocus moves input focus to the given field.
func (m *Model) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// listenEvents waits for the next progress event from the session.
func listenEvents(events <-chan download.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: ev}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🐱 Scratch Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Bulk download Scratch projects"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Starting project ID:"))
	b.WriteString("\n")
	b.WriteString(m.inputs[inputStartID].View())
	b.WriteString("\n\n")
	b.WriteString(subtitleStyle.Render("Number of projects:"))
	b.WriteString("\n")
	b.WriteString(m.inputs[inputAmount].View())
	b.WriteString("\n\n")

	// Options
	torCheck := "[ ]"
	if m.useTor {
		torCheck = "[×]"
	}
	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[×]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Route explore traffic over Tor (t)\n", torCheck))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (v)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output path: %s", m.settings.OutputDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	switch {
	case m.run == nil:
		b.WriteString(subtitleStyle.Render("Preparing session..."))
	case m.stopping:
		b.WriteString(warningStyle.Render("Stopping, finishing in-flight downloads..."))
	default:
		b.WriteString(subtitleStyle.Render("Downloading projects..."))
	}
	b.WriteString("\n\n")

	if m.run != nil {
		// Progress bar for bounded sessions
		if m.snapshot.Target > 0 {
			percent := float64(m.snapshot.Succeeded) / float64(m.snapshot.Target)
			b.WriteString(m.progress.ViewAs(percent))
			b.WriteString("\n")
		}

		stats := fmt.Sprintf(
			"Downloaded: %d | Failed: %d | In flight: %d",
			m.snapshot.Succeeded,
			m.snapshot.Failed,
			m.snapshot.InFlight,
		)
		if m.snapshot.Target > 0 {
			stats += fmt.Sprintf(" | Target: %d", m.snapshot.Target)
		}
		b.WriteString(infoStyle.Render(stats))
		b.WriteString("\n\n")
	}

	// Logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Session Complete!\n\n"+
			"Downloaded: %d\n"+
			"Failed: %d\n"+
			"Dataset rows: %d\n"+
			"Took: %.2fs",
		m.summary.Successes,
		m.summary.Failures,
		m.summary.Rows,
		m.summary.Elapsed.Seconds(),
	))
	b.WriteString(box)

	if m.run != nil {
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("Saved to: %s", m.run.session.Dir())))
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: next field • t: tor • v: verbose • esc: quit"
	case StateRunning:
		if m.stopping {
			return "ctrl+c: abort"
		}
		return "esc: stop after in-flight • ctrl+c: abort"
	case StateComplete, StateError:
		return "r: new session • q: quit"
	}
	return ""
}

// setupRun prepares the session directories, sinks and manager.
func (m *Model) setupRun() tea.Cmd {
	startRaw := strings.TrimSpace(m.inputs[inputStartID].Value())
	amountRaw := strings.TrimSpace(m.inputs[inputAmount].Value())
	settings := m.settings
	useTor := m.useTor
	verbose := m.verbose

	return func() tea.Msg {
		var amount int64
		if amountRaw != "" {
			n, err := strconv.ParseInt(amountRaw, 10, 64)
			if err != nil || n < 0 {
				return RunReadyMsg{Err: fmt.Errorf("amount must be a non-negative number")}
			}
			amount = n
		}

		sess := session.New(settings.OutputDir, settings.StagingDir)
		if err := sess.Prepare(); err != nil {
			return RunReadyMsg{Err: err}
		}

		logFile, err := os.Create(sess.LogPath())
		if err != nil {
			return RunReadyMsg{Err: err}
		}

		level := telemetry.LogLevel()
		if verbose {
			level = slog.LevelDebug
		}
		logger := telemetry.NewLogger(logFile, level)

		proxyAddr := ""
		if useTor {
			proxyAddr = settings.ProxyAddress
		}
		clientCfg := settings.ToClientConfig()
		clientCfg.HTTP = httpx.NewClient(httpx.Config{})
		clientCfg.ExploreHTTP = httpx.NewClient(httpx.Config{ProxyAddr: proxyAddr})
		client := scratch.NewClient(clientCfg)

		// Blank start ID discovers projects through the explore listing;
		// otherwise IDs are crawled sequentially from the given start.
		var src source.Source
		switch {
		case startRaw == "":
			src = source.NewExploreSource(source.ExploreConfig{
				Client:   client,
				Query:    settings.ExploreQuery,
				Mode:     settings.ExploreMode,
				Language: settings.ExploreLanguage,
				Count:    amount,
				Logger:   logger,
			})
		case startRaw == "random" || startRaw == "rand":
			src = source.NewSequenceSource(source.RandomStart(), 0)
		default:
			start, err := strconv.ParseInt(startRaw, 10, 64)
			if err != nil || start <= 0 {
				logFile.Close()
				return RunReadyMsg{Err: fmt.Errorf("start ID must be a positive number")}
			}
			src = source.NewSequenceSource(model.ProjectID(start), 0)
		}

		recorder, err := sink.New(sink.Config{Session: sess, Logger: logger})
		if err != nil {
			logFile.Close()
			return RunReadyMsg{Err: err}
		}

		fetcher := download.NewFetcher(download.FetcherConfig{
			Client:   client,
			Packer:   archive.NewPacker(sess.StagingDir()),
			Session:  sess,
			Cooldown: settings.Cooldown(),
			MaxDelay: settings.MaxDelay(),
			Logger:   logger,
		})

		stopper := download.NewStopper(logger)
		events := make(chan download.ProgressEvent, 64)

		manager := download.NewManager(download.Config{
			Source:     src,
			Runner:     fetcher,
			Recorder:   recorder,
			Stopper:    stopper,
			Workers:    settings.Workers,
			Target:     amount,
			Timeout:    settings.Timeout(),
			MaxRetries: settings.MaxRetries,
			Logger:     logger,
			OnProgress: func(ev download.ProgressEvent) {
				// Drop events the UI cannot drain fast enough
				select {
				case events <- ev:
				default:
				}
			},
		})

		return RunReadyMsg{Run: &run{
			session:  sess,
			recorder: recorder,
			manager:  manager,
			stopper:  stopper,
			events:   events,
			logFile:  logFile,
		}}
	}
}

// startRun runs the session in the background.
func (m *Model) startRun() tea.Cmd {
	r := m.run
	ctx := m.ctx
	return func() tea.Msg {
		err := r.manager.Run(ctx)
		summary := r.recorder.Summary()
		if cerr := r.recorder.Close(); cerr != nil && err == nil {
			err = cerr
		}
		r.logFile.Close()
		close(r.events)
		return RunDoneMsg{Summary: summary, Err: err}
	}
}

// Run starts the TUI application.
func Run() error {
	p := tea.NewProgram(NewModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
