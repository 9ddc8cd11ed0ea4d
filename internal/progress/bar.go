package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const barWidth = 20

// Bar renders a terminal progress bar with bubbletea
type Bar struct {
	Total  int
	Output io.Writer
	Logger *zap.Logger
}

// Run drives a bubbletea program from events. It returns once the program
// exits and events is closed.
func (b *Bar) Run(events <-chan Event) {
	out := b.Output
	if out == nil {
		out = os.Stderr
	}
	log := b.Logger
	if log == nil {
		log = zap.NewNop()
	}

	p := tea.NewProgram(newBarModel(b.Total, time.Now),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for ev := range events {
			p.Send(ev)
		}
		p.Send(channelClosedMsg{})
	}()

	if _, err := p.Run(); err != nil {
		log.Warn("Progress bar stopped", zap.Error(err))
	}
	<-forwarded
}

type tickMsg time.Time

type channelClosedMsg struct{}

type barModel struct {
	total    int
	done     int
	label    string
	finished bool
	started  time.Time
	now      func() time.Time
	bar      progress.Model
	msgStyle lipgloss.Style
}

func newBarModel(total int, now func() time.Time) barModel {
	return barModel{
		total:    total,
		started:  now(),
		now:      now,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage()),
		msgStyle: lipgloss.NewStyle().Faint(true),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m barModel) Init() tea.Cmd {
	return tick()
}

func (m barModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case Event:
		switch msg.Kind {
		case CodeStarted:
			m.label = fmt.Sprintf("Redeeming code %s..", msg.Code)
		case Increment:
			if m.done < m.total {
				m.done++
			}
		case Finished:
			m.finished = true
			m.label = ""
			return m, tea.Quit
		}
		return m, nil
	case channelClosedMsg:
		m.finished = true
		return m, tea.Quit
	case tickMsg:
		if m.finished {
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func (m barModel) percent() float64 {
	if m.total <= 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

func (m barModel) View() string {
	elapsed := m.now().Sub(m.started).Truncate(time.Second)
	hours := int(elapsed.Hours())
	mins := int(elapsed.Minutes()) % 60
	secs := int(elapsed.Seconds()) % 60

	line := fmt.Sprintf("[%02d:%02d:%02d] [%s] %2d%% (%d/%d)",
		hours, mins, secs, m.bar.ViewAs(m.percent()), int(m.percent()*100), m.done, m.total)
	if m.label != "" {
		line += " " + m.msgStyle.Render(m.label)
	}
	if m.finished {
		line += "\n"
	}
	return line
}
