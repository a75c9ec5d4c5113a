// Package ui provides the Bubbletea terminal progress display for the
// voxengine batch CLI (spec §11.5), adapted from
// linuxmatters-jivetalking/internal/ui's file-queue progress model to this
// module's record -> pipeline -> transcribe -> subtitle stages in place of
// jivetalking's two-pass loudness-normalization stages.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Stage names one phase of processing a single input file.
type Stage int

const (
	StageQueued Stage = iota
	StageCapturing
	StageTranscribing
	StageWriting
	StageDone
	StageError
)

func (s Stage) String() string {
	switch s {
	case StageCapturing:
		return "capturing"
	case StageTranscribing:
		return "transcribing"
	case StageWriting:
		return "writing"
	case StageDone:
		return "done"
	case StageError:
		return "error"
	default:
		return "queued"
	}
}

// FileProgress tracks one input/output pair's progress through the
// pipeline.
type FileProgress struct {
	Name     string
	Stage    Stage
	Progress float64 // 0.0 to 1.0
	Segments int
	Err      error
}

// ProgressMsg reports a progress update for one file.
type ProgressMsg struct {
	Index    int
	Stage    Stage
	Progress float64
	Segments int
}

// FileCompleteMsg reports a file finished, successfully or not.
type FileCompleteMsg struct {
	Index int
	Err   error
}

// AllCompleteMsg reports every file has finished.
type AllCompleteMsg struct{}

// Model is the Bubbletea model driving the batch progress display.
type Model struct {
	Files        []FileProgress
	StartTime    time.Time
	Done         bool
	ProgressChan chan tea.Msg
	Width        int
}

// NewModel returns a Model tracking one FileProgress per name in names.
func NewModel(names []string) Model {
	files := make([]FileProgress, len(names))
	for i, n := range names {
		files[i] = FileProgress{Name: n, Stage: StageQueued}
	}
	return Model{Files: files, StartTime: time.Now(), ProgressChan: make(chan tea.Msg, 16)}
}

func (m Model) Init() tea.Cmd {
	return waitForMsg(m.ProgressChan)
}

func waitForMsg(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		return m, waitForMsg(m.ProgressChan)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, waitForMsg(m.ProgressChan)
	case ProgressMsg:
		if msg.Index >= 0 && msg.Index < len(m.Files) {
			m.Files[msg.Index].Stage = msg.Stage
			m.Files[msg.Index].Progress = msg.Progress
			m.Files[msg.Index].Segments = msg.Segments
		}
		return m, waitForMsg(m.ProgressChan)
	case FileCompleteMsg:
		if msg.Index >= 0 && msg.Index < len(m.Files) {
			if msg.Err != nil {
				m.Files[msg.Index].Stage = StageError
				m.Files[msg.Index].Err = msg.Err
			} else {
				m.Files[msg.Index].Stage = StageDone
				m.Files[msg.Index].Progress = 1.0
			}
		}
		return m, waitForMsg(m.ProgressChan)
	case AllCompleteMsg:
		m.Done = true
		return m, tea.Quit
	}
	return m, waitForMsg(m.ProgressChan)
}

var (
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func (m Model) View() string {
	var b strings.Builder
	for _, f := range m.Files {
		bar := progressBar(f.Progress, 24)
		line := fmt.Sprintf("%-28s [%s] %3.0f%% %s", truncate(f.Name, 28), bar, f.Progress*100, f.Stage)
		switch f.Stage {
		case StageDone:
			line = doneStyle.Render(line)
		case StageError:
			line = errStyle.Render(fmt.Sprintf("%s (%v)", line, f.Err))
		case StageCapturing, StageTranscribing, StageWriting:
			line = activeStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.Done {
		b.WriteString(fmt.Sprintf("\ndone in %s\n", time.Since(m.StartTime).Round(time.Millisecond)))
	}
	return b.String()
}

func progressBar(frac float64, width int) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))
	return strings.Repeat("=", filled) + strings.Repeat(" ", width-filled)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
