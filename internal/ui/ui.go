package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/chartpull/internal/tasks"
)

// RunComplete carries the engine's final result into the UI.
type RunComplete struct {
	Result *tasks.EnrichResult
	Err    error
}

// Model renders a single progress view for an enrichment run.
//
// Progress arrives on the updates channel; the run's completion arrives on
// the done channel. Both are produced by the caller's engine goroutine.
type Model struct {
	spinner  spinner.Model
	updates  <-chan tasks.ProgressUpdate
	done     <-chan RunComplete
	current  tasks.ProgressUpdate
	recent   []string
	batches  int
	failures int
	finished bool
	result   *tasks.EnrichResult
	err      error
}

const recentLines = 5

// NewModel creates a progress model fed by the given channels.
func NewModel(updates <-chan tasks.ProgressUpdate, done <-chan RunComplete) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.ok

	return Model{spinner: s, updates: updates, done: done}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUpdate(), m.waitForDone())
}

// waitForUpdate reads the next progress update off the channel.
func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return channelClosedMsg()
		}
		return progressUpdateMsg(update)
	}
}

// waitForDone blocks until the engine goroutine reports completion.
func (m Model) waitForDone() tea.Cmd {
	return func() tea.Msg {
		c := <-m.done
		return runCompleteMsg(c.Result, c.Err)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			update := msg.data.(tasks.ProgressUpdate)
			m.current = update

			switch update.Phase {
			case tasks.FlushBatch:
				m.batches++
				m.recent = appendRecent(m.recent, styles.ok.Render("✓ ")+update.Message)
			case tasks.WriteFailures:
				m.recent = appendRecent(m.recent, styles.warn.Render(update.Message))
			case tasks.LookupTracks:
				if strings.Contains(update.Message, "✗") {
					m.failures++
					m.recent = appendRecent(m.recent, styles.err.Render(update.Message))
				}
			}
			return m, m.waitForUpdate()

		case MsgRunComplete:
			data := msg.data.(struct {
				result *tasks.EnrichResult
				err    error
			})
			m.finished = true
			m.result = data.result
			m.err = data.err
			return m, tea.Quit

		case MsgChannelClosed:
			return m, nil
		}
	}

	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.title.Render("chartpull · enriching chart entries"))
	sb.WriteString("\n")

	if m.finished {
		if m.err != nil {
			sb.WriteString(styles.err.Render(fmt.Sprintf("✗ run failed: %v", m.err)))
		} else if m.result != nil {
			sb.WriteString(styles.ok.Render(fmt.Sprintf(
				"✓ done: %d processed, %d enriched, %d failed, %d batches",
				m.result.Processed, m.result.Succeeded, m.result.Failed, len(m.result.BatchFiles))))
		}
		sb.WriteString("\n")
		return sb.String()
	}

	if m.current.Total > 0 {
		sb.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), m.current.Message))
		sb.WriteString(styles.help.Render(fmt.Sprintf(
			"%d/%d · %d batches flushed · %d failures", m.current.Step, m.current.Total, m.batches, m.failures)))
	} else {
		sb.WriteString(fmt.Sprintf("%s starting...", m.spinner.View()))
	}
	sb.WriteString("\n\n")

	for _, line := range m.recent {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(styles.help.Render("q to quit"))
	sb.WriteString("\n")

	return sb.String()
}

// Result returns the run result captured at completion.
func (m Model) Result() (*tasks.EnrichResult, error) {
	return m.result, m.err
}

func appendRecent(lines []string, line string) []string {
	lines = append(lines, line)
	if len(lines) > recentLines {
		lines = lines[len(lines)-recentLines:]
	}
	return lines
}
