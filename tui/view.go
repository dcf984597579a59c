package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sarchlab/pipeviz/render"
	"github.com/sarchlab/pipeviz/session"
)

// registerRows is the number of registers per column.
const registerRows = 8

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pipeviz"))
	b.WriteString("  ")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	if m.frame == nil {
		b.WriteString(panelStyle.Render(m.sourcePanel()))
	} else {
		b.WriteString(scalarLine(m.frame))
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(pipelinePanel(m.frame)))
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			panelStyle.Render(registerPanel(m.frame.Registers)),
			panelStyle.Render(memoryPanel(m.frame)),
		))
		b.WriteString("\n")
		b.WriteString(m.progressLine())
	}
	b.WriteString("\n")

	if m.notice != nil {
		b.WriteString(noticeText(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) statusLine() string {
	if m.controls == nil {
		return ""
	}

	st := m.controls.Status()
	state := "paused"
	if st.Running {
		state = "playing"
	}
	line := fmt.Sprintf("%s  tick %v  forwarding %s", state, st.Tick, onOff(st.NextForwarding))
	if st.Loaded && st.Forwarding != st.NextForwarding {
		line += fmt.Sprintf(" (shown: %s)", onOff(st.Forwarding))
	}

	return labelStyle.Render(line)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (m *Model) sourcePanel() string {
	if m.source == "" {
		return labelStyle.Render("no source loaded")
	}
	return m.source
}

func (m *Model) progressLine() string {
	p := m.frame.Progress
	percent := 0.0
	if p.Max > 0 {
		percent = float64(p.Value) / float64(p.Max)
	}
	return m.progress.ViewAs(percent) + "  " + p.Label
}

func scalarLine(fr *render.Frame) string {
	return fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		labelStyle.Render("clock"), fr.Clock,
		labelStyle.Render("pc"), fr.PC,
		labelStyle.Render("completed"), fr.InstructionsCompleted,
		labelStyle.Render("throughput"), fr.Throughput,
	)
}

func pipelinePanel(fr *render.Frame) string {
	cols := make([]string, 0, len(fr.Pipeline))
	for _, cell := range fr.Pipeline {
		body := titleStyle.Render(cell.Stage) + "\n" + cell.Text
		if cell.Flags != "" {
			body += "\n" + labelStyle.Render(cell.Flags)
		}
		cols = append(cols, stageStyle.Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// registerPanel lays registers out column by column. Changed registers are
// drawn in red and marked with an asterisk for terminals without color.
func registerPanel(cells []render.RegisterCell) string {
	var cols []string
	for start := 0; start < len(cells); start += registerRows {
		end := min(start+registerRows, len(cells))
		lines := make([]string, 0, registerRows)
		for _, cell := range cells[start:end] {
			lines = append(lines, registerCell(cell))
		}
		cols = append(cols, strings.Join(lines, "\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func registerCell(cell render.RegisterCell) string {
	text := cell.Name + " = " + cell.Value
	if cell.Changed {
		return changedStyle.Render(text + "*")
	}
	return registerStyle.Render(text)
}

func memoryPanel(fr *render.Frame) string {
	lines := []string{titleStyle.Render("memory")}
	for _, cell := range fr.Memory {
		if cell.Tag == "" && cell.Address == "" && cell.Value == "" {
			lines = append(lines, labelStyle.Render("-"))
			continue
		}
		lines = append(lines, fmt.Sprintf("%-3s [%s] = %s", cell.Tag, cell.Address, cell.Value))
	}
	return strings.Join(lines, "\n")
}

func noticeText(n *session.Notice) string {
	if n.Kind == session.NoticeFailure {
		return failureStyle.Render(n.Text)
	}
	return infoStyle.Render(n.Text)
}
