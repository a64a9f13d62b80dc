package main

import (
	"fmt"
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/nucsim/internal/nuclide"
	"github.com/san-kum/nucsim/internal/transport"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

var channels = []string{"total", "absorption", "fission"}

type browseModel struct {
	nuc  *nuclide.Nuclide
	opts *nuclide.Options
	temp float64

	eMin, eMax float64
	channel    int

	width int
}

func newBrowseModel(n *nuclide.Nuclide, opts *nuclide.Options, temp float64) browseModel {
	return browseModel{
		nuc:  n,
		opts: opts,
		temp: temp,
		eMin: opts.EnergyMin,
		eMax: opts.EnergyMax,
	}
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		span := math.Log(m.eMax / m.eMin)
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			// pan down in energy by a tenth of the span
			shift := math.Exp(-span / 10)
			m.eMin *= shift
			m.eMax *= shift
		case "right", "l":
			shift := math.Exp(span / 10)
			m.eMin *= shift
			m.eMax *= shift
		case "+", "=", "up", "k":
			// zoom in around the geometric center
			c := math.Sqrt(m.eMin * m.eMax)
			half := math.Exp(span / 4)
			m.eMin, m.eMax = c/half, c*half
		case "-", "down", "j":
			c := math.Sqrt(m.eMin * m.eMax)
			half := math.Exp(span)
			m.eMin, m.eMax = c/half, c*half
		case "tab", "c":
			m.channel = (m.channel + 1) % len(channels)
		case "r":
			m.eMin, m.eMax = m.opts.EnergyMin, m.opts.EnergyMax
		}
		if m.eMin < m.opts.EnergyMin {
			m.eMin = m.opts.EnergyMin
		}
		if m.eMax > m.opts.EnergyMax {
			m.eMax = m.opts.EnergyMax
		}
	}
	return m, nil
}

func (m browseModel) View() string {
	width := m.width
	if width <= 0 || width > 100 {
		width = 100
	}

	_, total, absorption, fission := transport.Scan(
		m.nuc, m.opts, m.eMin, m.eMax, width-12, m.temp, 1)

	var data []float64
	switch channels[m.channel] {
	case "total":
		data = total
	case "absorption":
		data = absorption
	case "fission":
		data = fission
	}
	logData := make([]float64, len(data))
	for i, v := range data {
		logData[i] = math.Log10(math.Max(v, 1e-10))
	}

	graph := asciigraph.Plot(logData,
		asciigraph.Height(16),
		asciigraph.Width(width-12),
	)

	header := titleStyle.Render(fmt.Sprintf("%s  %s", m.nuc.Name(), channels[m.channel])) +
		dimStyle.Render(fmt.Sprintf("  log10(barns) at %.1f K", m.temp))
	window := valueStyle.Render(fmt.Sprintf("[%.3g eV, %.3g eV]", m.eMin, m.eMax))
	help := dimStyle.Render("←/→ pan  +/- zoom  tab channel  r reset  q quit")

	return header + "\n" + window + "\n\n" + graph + "\n\n" + help + "\n"
}

func runBrowse(cmd *cobra.Command, args []string) error {
	reg, _, err := openRegistry([]string{nuclideName}, []float64{temperature})
	if err != nil {
		return err
	}
	n, _ := reg.Get(0)

	prog := tea.NewProgram(newBrowseModel(n, reg.Options(), temperature))
	_, err = prog.Run()
	return err
}
