package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/oncodyn/tumorsim/internal/therapy"
)

const (
	replayWidth  = 70
	replayHeight = 12
	barWidth     = 50
)

type TickMsg time.Time

// Model replays a computed trajectory row by row in the terminal.
type Model struct {
	rec       *therapy.Record
	modelName string
	policy    string

	playHead int
	stride   int
	running  bool
	showHelp bool

	sizes []float64
	drugs []float64
}

func NewModel(rec *therapy.Record, modelName, policy string) Model {
	sizes, _ := rec.Column(therapy.TumourSize)
	drugs, _ := rec.Column(therapy.DrugConcentration)

	stride := rec.Len() / 500
	if stride < 1 {
		stride = 1
	}

	return Model{
		rec:       rec,
		modelName: modelName,
		policy:    policy,
		playHead:  0,
		stride:    stride,
		running:   true,
		sizes:     sizes,
		drugs:     drugs,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.playHead = 0
		case "[":
			m.scrub(-10 * m.stride)
		case "]":
			m.scrub(10 * m.stride)
		case "up", "k":
			m.stride *= 2
		case "down", "j":
			if m.stride > 1 {
				m.stride /= 2
			}
		case "e":
			m.playHead = m.rec.Len() - 1
		case "?":
			m.showHelp = !m.showHelp
		}

	case TickMsg:
		if m.running && m.playHead < m.rec.Len()-1 {
			m.playHead += m.stride
			if m.playHead > m.rec.Len()-1 {
				m.playHead = m.rec.Len() - 1
			}
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}

	return m, nil
}

func (m *Model) scrub(delta int) {
	m.playHead += delta
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead > m.rec.Len()-1 {
		m.playHead = m.rec.Len() - 1
	}
}

func (m Model) View() string {
	if m.rec.Empty() {
		return "no trajectory to replay\n"
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s / %s", m.modelName, m.policy)) + "\n")

	sizeChart := asciigraph.Plot(m.sizes[:m.playHead+1],
		asciigraph.Height(replayHeight),
		asciigraph.Width(replayWidth),
		asciigraph.Caption("tumour size"),
	)
	s.WriteString(graphStyle.Render(sizeChart) + "\n")

	doseChart := asciigraph.Plot(m.drugs[:m.playHead+1],
		asciigraph.Height(4),
		asciigraph.Width(replayWidth),
		asciigraph.Caption("drug concentration"),
	)
	s.WriteString(doseStyle.Render(doseChart) + "\n\n")

	s.WriteString(m.renderStats())

	percent := float64(m.playHead) / float64(m.rec.Len()-1)
	s.WriteString("\n" + ProgressBar(percent, barWidth) + "\n")

	if m.showHelp {
		s.WriteString(helpStyle.Render("space play/pause · [ ] scrub · k/j speed · r restart · e end · q quit") + "\n")
	} else {
		s.WriteString(helpStyle.Render("? help · q quit") + "\n")
	}

	return s.String()
}

func (m Model) renderStats() string {
	row := m.rec.Rows[m.playHead]

	var s strings.Builder
	status := statusPaused.Render("paused")
	if m.running && m.playHead < m.rec.Len()-1 {
		status = statusRunning.Render("playing")
	}
	s.WriteString(labelStyle.Render("Status") + status + "\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2f", row.Time)) + "\n")
	for i, name := range m.rec.Vars {
		s.WriteString(labelStyle.Render(name) + valueStyle.Render(fmt.Sprintf("%.2f", row.Pops[i])) + "\n")
	}
	s.WriteString(labelStyle.Render("Size") + valueStyle.Render(fmt.Sprintf("%.2f", row.Size)) + "\n")
	s.WriteString(labelStyle.Render("Dose") + valueStyle.Render(fmt.Sprintf("%.2f", row.Drug)) + "\n")

	return statsStyle.Render(s.String())
}

// Run starts the replay UI and blocks until it exits.
func Run(rec *therapy.Record, modelName, policy string) error {
	p := tea.NewProgram(NewModel(rec, modelName, policy))
	_, err := p.Run()
	return err
}
