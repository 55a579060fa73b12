// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lidarkit/sickpls/pkg/pls"
	"github.com/lidarkit/sickpls/pkg/telegram"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live scan viewer",
	Long: `Switch the scanner to monitor stream mode and display incoming scan
profiles in a live terminal UI: a range sparkline across the field of
view, nearest/farthest readings and link diagnostics.

Press 'q' to quit; the scanner is switched back to request mode on
exit.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// Messages
type watchTickMsg time.Time
type watchScanMsg struct {
	profile *pls.ScanProfile
	at      time.Time
}
type watchStatsMsg telegram.ScanStats

// watchModel is the Bubble Tea model for the live scan viewer
type watchModel struct {
	connInfo   string
	scanAngle  float64
	resolution float64
	units      pls.MeasuringUnits

	spin        spinner.Model
	lastProfile *pls.ScanProfile
	lastAt      time.Time
	scanCount   int
	scanTimes   []time.Time
	stats       telegram.ScanStats

	width    int
	height   int
	quitting bool
}

func initialWatchModel(connInfo string, dev *pls.Device) watchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	angle, _ := dev.ScanAngle()
	resolution, _ := dev.ScanResolution()
	units, _ := dev.MeasuringUnits()

	return watchModel{
		connInfo:   connInfo,
		scanAngle:  angle,
		resolution: resolution,
		units:      units,
		spin:       sp,
		width:      80,
		height:     24,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		watchTickCmd(),
		tea.EnterAltScreen,
	)
}

func watchTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case watchTickMsg:
		return m, watchTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case watchScanMsg:
		m.lastProfile = msg.profile
		m.lastAt = msg.at
		m.scanCount++
		m.scanTimes = append(m.scanTimes, msg.at)
		// Keep one second of arrival times for the rate display
		cutoff := msg.at.Add(-time.Second)
		for len(m.scanTimes) > 0 && m.scanTimes[0].Before(cutoff) {
			m.scanTimes = m.scanTimes[1:]
		}

	case watchStatsMsg:
		m.stats = telegram.ScanStats(msg)
	}

	return m, nil
}

// sparkline renders measurements as one row of block glyphs, bucketed
// down to the requested width. Zero-range buckets render as a space.
func sparkline(values []uint16, width int) string {
	if width < 1 || len(values) == 0 {
		return ""
	}
	if width > len(values) {
		width = len(values)
	}

	var max uint16
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return strings.Repeat(" ", width)
	}

	glyphs := []rune("▁▂▃▄▅▆▇█")
	var b strings.Builder
	for i := 0; i < width; i++ {
		lo := i * len(values) / width
		hi := (i + 1) * len(values) / width
		if hi <= lo {
			hi = lo + 1
		}
		var bucket uint16
		for _, v := range values[lo:hi] {
			if v > bucket {
				bucket = v
			}
		}
		if bucket == 0 {
			b.WriteRune(' ')
			continue
		}
		idx := int(bucket) * (len(glyphs) - 1) / int(max)
		b.WriteRune(glyphs[idx])
	}
	return b.String()
}

func (m watchModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("SICKPLS - LIVE SCAN"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | %.0f° field, %.2f° steps | Press 'q' to quit",
		m.connInfo, m.scanAngle, m.resolution)))
	s.WriteString("\n\n")

	if m.lastProfile == nil {
		s.WriteString(m.spin.View())
		s.WriteString(headerStyle.Render(" Waiting for first scan..."))
		s.WriteString("\n")
		return s.String()
	}

	p := m.lastProfile

	// Range sparkline across the field of view
	lineWidth := m.width - 6
	if lineWidth < 10 {
		lineWidth = 10
	}
	s.WriteString(boxStyle.Render(sparkline(p.Measurements, lineWidth)))
	s.WriteString("\n\n")

	var nearest, farthest uint16
	if p.Count() > 0 {
		nearest, farthest = p.Measurements[0], p.Measurements[0]
		for _, r := range p.Measurements[1:] {
			if r < nearest {
				nearest = r
			}
			if r > farthest {
				farthest = r
			}
		}
	}

	info := strings.Builder{}
	info.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("Nearest:"), valueStyle.Render(fmt.Sprintf("%d %s", nearest, m.units)),
		labelStyle.Render("Farthest:"), valueStyle.Render(fmt.Sprintf("%d %s", farthest, m.units)),
		labelStyle.Render("Points:"), valueStyle.Render(fmt.Sprintf("%d", p.Count())),
	))
	info.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
		labelStyle.Render("Scan:"), valueStyle.Render(fmt.Sprintf("%d.%d", p.ScanIndex, p.PartialScanIndex)),
		labelStyle.Render("Total:"), valueStyle.Render(fmt.Sprintf("%d", m.scanCount)),
		labelStyle.Render("Rate:"), valueStyle.Render(fmt.Sprintf("%d scans/s", len(m.scanTimes))),
	))
	s.WriteString(boxStyle.Render(info.String()))
	s.WriteString("\n\n")

	link := strings.Builder{}
	link.WriteString(fmt.Sprintf("%s %s   ",
		labelStyle.Render("Frames:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.Frames))))
	badCRC := fmt.Sprintf("%d", m.stats.ChecksumErrors)
	if m.stats.ChecksumErrors > 0 {
		badCRC = errorStyle.Render(badCRC)
	} else {
		badCRC = valueStyle.Render(badCRC)
	}
	link.WriteString(fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Bad CRC:"), badCRC,
		labelStyle.Render("Discarded:"), valueStyle.Render(fmt.Sprintf("%d bytes", m.stats.BytesDiscarded)),
	))
	s.WriteString(boxStyle.Render(link.String()))
	s.WriteString("\n")

	return s.String()
}

func runWatch(cmd *cobra.Command, args []string) error {
	dev, connInfo, err := openDevice()
	if err != nil {
		return err
	}
	defer dev.Uninitialize()

	if err := dev.SetMonitorStreamMode(); err != nil {
		return fmt.Errorf("failed to enter stream mode: %w", err)
	}

	p := tea.NewProgram(initialWatchModel(connInfo, dev))

	// Scan pump: follows the monitor's generation counter and feeds
	// parsed profiles into the TUI
	go func() {
		mon := dev.Monitor()
		_, gen := mon.Latest()
		for {
			frame, next, ok := mon.Wait(gen, time.Now().Add(time.Second))
			if !ok {
				p.Send(watchStatsMsg(mon.Stats()))
				continue
			}
			gen = next
			if frame.CommandCode() != telegram.ReplyValues {
				continue
			}
			profile, err := pls.ParseScanProfile(frame.Payload())
			if err != nil {
				continue
			}
			p.Send(watchScanMsg{profile: profile, at: frame.Timestamp()})
			p.Send(watchStatsMsg(mon.Stats()))
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}

	return nil
}
