package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
)

const barWidth = 30

// indicator prints one line per report. It does not redraw in place, so the
// output stays readable when stderr is not a terminal.
type indicator struct {
	host  *Host
	title string
	bar   progress.Model
}

func newIndicator(h *Host, title string) *indicator {
	ind := &indicator{
		host:  h,
		title: title,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
	}
	h.println(headerStyle.Render(title))
	return ind
}

func (i *indicator) Report(percent int, msg string) {
	line := i.bar.ViewAs(float64(clamp(percent)) / 100)
	if msg != "" {
		line += " " + mutedStyle.Render(msg)
	}
	i.host.println(line)
}

func (i *indicator) Close() {
	i.host.println(mutedStyle.Render(fmt.Sprintf("%s done", i.title)))
}

func clamp(percent int) int {
	switch {
	case percent < 0:
		return 0
	case percent > 100:
		return 100
	}
	return percent
}
