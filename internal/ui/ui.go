package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LikedListView ViewState = iota
	ConfirmView
	TransferView
	ResultView
)

// Settings configures the replay started from the TUI.
type Settings struct {
	Operation models.Operation
	BatchSize int // ignored for add
	Delay     time.Duration
	DryRun    bool
	Fetch     tasks.FetchOpts
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.Engine
	source       tasks.Library
	destination  tasks.Library
	settings     Settings
	width        int
	height       int
	loading      bool
	liked        models.LikedList
	likedList    list.Model
	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	progress     tasks.ProgressUpdate
	bar          progress.Model
	result       *tasks.ReplayResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.Engine, source, destination tasks.Library, settings Settings) *Model {
	return &Model{
		ctx:         ctx,
		view:        LikedListView,
		engine:      engine,
		source:      source,
		destination: destination,
		settings:    settings,
		loading:     true,
		likedList:   list.New(nil, list.NewDefaultDelegate(), 0, 0),
		bar:         progress.New(progress.WithDefaultGradient()),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init initializes the TUI by fetching the source account's liked tracks.
func (m *Model) Init() tea.Cmd {
	return m.fetchLiked()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.likedList.SetSize(msg.Width-4, msg.Height-8)
		m.bar.Width = max(msg.Width-8, 10)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LikedListView:
			return m.handleLikedListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case TransferView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == LikedListView && !m.loading {
		var cmd tea.Cmd
		m.likedList, cmd = m.likedList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgLikedFetched:
		data := msg.data.(likedFetched)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.liked = data.list
		m.likedList = list.New(trackItems(data.list), list.NewDefaultDelegate(), 0, 0)
		m.likedList.Title = fmt.Sprintf("Liked Tracks (%d, oldest first)", len(data.list))
		m.likedList.SetSize(m.width-4, m.height-8)
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgReplayComplete:
		data := msg.data.(replayComplete)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.progressChan = nil
		m.done = nil
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.loading {
		return styles.title.Render("Fetching liked tracks...") + "\n" + m.progress.Message
	}
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})
	}

	switch m.view {
	case LikedListView:
		return m.renderLikedList()
	case ConfirmView:
		return m.renderConfirm()
	case TransferView:
		return m.renderTransfer()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleLikedListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.loading {
		return m, nil
	}
	if m.err != nil {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.restart):
			return m, m.refetch()
		}
		return m, nil
	}
	if m.likedList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.likedList, cmd = m.likedList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if len(m.liked) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	case key.Matches(msg, m.keys.restart):
		return m, m.refetch()
	}

	var cmd tea.Cmd
	m.likedList, cmd = m.likedList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.yes):
		m.view = TransferView
		return m, m.startReplay()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = LikedListView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		return m, m.refetch()
	}
	return m, nil
}

func (m *Model) refetch() tea.Cmd {
	m.view = LikedListView
	m.loading = true
	m.result = nil
	m.err = nil
	m.progress = tasks.ProgressUpdate{}
	return m.fetchLiked()
}

func (m *Model) fetchLiked() tea.Cmd {
	return func() tea.Msg {
		l, err := m.engine.FetchLiked(m.ctx, m.source, nil, m.settings.Fetch)
		return likedFetchedMsg(l, err)
	}
}

// startReplay runs the replay in the background; the final message arrives on done after progress closes.
func (m *Model) startReplay() tea.Cmd {
	progressChan := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan = progressChan
	m.done = done
	m.progress = tasks.ProgressUpdate{Total: len(m.liked)}

	liked, s := m.liked, m.settings
	go func() {
		var (
			result *tasks.ReplayResult
			err    error
		)
		switch s.Operation {
		case models.OpDelete:
			result, err = m.engine.DeleteLiked(m.ctx, m.destination, liked, progressChan, s.BatchSize, s.DryRun)
		default:
			result, err = m.engine.AddLiked(m.ctx, m.destination, liked, progressChan, s.Delay, s.DryRun)
		}
		done <- replayCompleteMsg(result, err)
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progressChan, done := m.progressChan, m.done
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}
		update, ok := <-progressChan
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) operationLabel() string {
	if m.settings.Operation == models.OpDelete {
		return "Delete"
	}
	return "Add"
}

func (m *Model) renderLikedList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.restart, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.likedList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	var b strings.Builder

	title := fmt.Sprintf("%s %d liked tracks on the destination account?", m.operationLabel(), len(m.liked))
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")

	if oldest, ok := m.liked.Oldest(); ok {
		newest, _ := m.liked.Newest()
		fmt.Fprintf(&b, "\nOldest: %s\nNewest: %s\n", oldest, newest)
	}

	switch m.settings.Operation {
	case models.OpDelete:
		fmt.Fprintf(&b, "Batch size: %d\n", m.settings.BatchSize)
	default:
		fmt.Fprintf(&b, "Delay between tracks: %s\n", m.settings.Delay)
	}
	if m.settings.DryRun {
		b.WriteString(styles.warn.Render("Dry run: no changes will be made"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no}))
	return b.String()
}

func (m *Model) renderTransfer() string {
	title := styles.title.Render(fmt.Sprintf("%s Liked Tracks", m.operationLabel()))

	var phase string
	switch m.progress.Phase {
	case tasks.ReplayBatch:
		phase = fmt.Sprintf("Sent %d/%d tracks", m.progress.Step, m.progress.Total)
	case tasks.ReplayPause:
		phase = "Waiting before next batch..."
	default:
		phase = "Starting..."
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s\n%s", title, m.bar.ViewAs(m.progress.Percent()/100), phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.result == nil {
		msg := "No result available"
		if m.err != nil {
			msg = fmt.Sprintf("Replay failed: %v", m.err)
		}
		return styles.err.Render(msg) + "\n\n" + helpView
	}

	r := m.result
	var title string
	if r.Status == models.RunCompleted {
		title = styles.ok.Render("✓ Replay Complete!")
	} else {
		title = styles.err.Render("✗ Replay Aborted")
	}

	info := fmt.Sprintf("\nOperation: %s\nProcessed: %d/%d tracks\nBatches: %d\nAPI calls: %d", r.Operation, r.Processed, r.Total, r.Batches, r.Calls)
	if r.DryRun {
		info += "\n" + styles.warn.Render("Dry run: no changes were made")
	}
	if m.err != nil {
		info += "\n\n" + styles.warn.Render(m.err.Error())
		info += "\nTracks before the failure were applied; re-running is safe."
	}

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
