package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/perfroute/pkg/project"
	"github.com/matzehuels/perfroute/pkg/render/boardtext"
)

var (
	viewKeyStyle    = lipgloss.NewStyle().Foreground(colorCyan)
	viewOnStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	viewOffStyle    = lipgloss.NewStyle().Foreground(colorDim)
	viewFailedStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// BoardModel - Interactive layout viewer
// =============================================================================

// BoardModel is the bubbletea model for browsing a routed layout. Layers can
// be toggled and the view narrowed to one net at a time.
type BoardModel struct {
	Layout *project.Layout
	Layers boardtext.Layer

	// Net is the index into Layout.Nets being shown; -1 shows every net.
	Net int
}

// NewBoardModel creates a viewer showing all layers and nets.
func NewBoardModel(l *project.Layout) BoardModel {
	return BoardModel{Layout: l, Layers: boardtext.AllLayers, Net: -1}
}

func (m BoardModel) Init() tea.Cmd {
	return nil
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	n := len(m.Layout.Nets)
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "1":
		m.Layers ^= boardtext.LayerParts
	case "2":
		m.Layers ^= boardtext.LayerBottom
	case "3":
		m.Layers ^= boardtext.LayerTop
	case "n", "tab", "right", "l":
		if n > 0 {
			m.Net = (m.Net+2)%(n+1) - 1
		}
	case "p", "shift+tab", "left", "h":
		if n > 0 {
			m.Net = (m.Net+n+1)%(n+1) - 1
		}
	case "a":
		m.Net = -1
	}
	return m, nil
}

// netName returns the selected net, or "" for all nets.
func (m BoardModel) netName() string {
	if m.Net < 0 || m.Net >= len(m.Layout.Nets) {
		return ""
	}
	return m.Layout.Nets[m.Net].Name
}

func (m BoardModel) View() string {
	var b strings.Builder
	res := m.Layout.Result

	title := m.Layout.Name
	if title == "" {
		title = "layout"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %dx%d  %d/%d nets routed",
		m.Layout.Board.Width, m.Layout.Board.Height, res.RoutedNets, res.RoutedNets+res.FailedNets)))
	b.WriteString("\n\n")

	net := m.netName()
	layers := m.Layers
	if layers == 0 {
		layers = boardtext.LayerHoles
	}
	b.WriteString(boardtext.Render(&m.Layout.Board, res, boardtext.Options{
		Layers: layers,
		Net:    net,
		Rulers: true,
		Color:  true,
	}))
	b.WriteString("\n")

	b.WriteString(m.layerLine())
	b.WriteString("\n")
	b.WriteString(m.netLine(net))
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render("1/2/3 layers  n/p net  a all  q quit"))
	return b.String()
}

func (m BoardModel) layerLine() string {
	parts := []string{}
	for _, l := range []struct {
		key   string
		name  string
		layer boardtext.Layer
	}{
		{"1", "parts", boardtext.LayerParts},
		{"2", "bottom", boardtext.LayerBottom},
		{"3", "top", boardtext.LayerTop},
	} {
		style := viewOffStyle
		if m.Layers&l.layer != 0 {
			style = viewOnStyle
		}
		parts = append(parts, viewKeyStyle.Render(l.key)+" "+style.Render(l.name))
	}
	return strings.Join(parts, "  ")
}

func (m BoardModel) netLine(net string) string {
	if net == "" {
		return StyleDim.Render("all nets")
	}
	res := m.Layout.Result
	count := 0
	for _, c := range res.Connections {
		if c.Net == net {
			count++
		}
	}
	line := fmt.Sprintf("net %s  [%d/%d]  %d connections", net, m.Net+1, len(m.Layout.Nets), count)
	if slices.Contains(res.FailedNetNames, net) {
		return viewFailedStyle.Render(line + "  unrouted")
	}
	return StyleValue.Render(line)
}
