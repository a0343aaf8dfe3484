package timer

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	timerdto "cadence/internal/modules/timer/dto"
	"cadence/internal/ui/components"
	"cadence/internal/ui/theme"
)

// IndicatorLines is the height of the compact timer bar.
const IndicatorLines = 1

var indicatorStyle = lipgloss.NewStyle().
	Background(theme.Surface0).
	Foreground(theme.Text).
	Padding(0, 1)

// ShowIndicator reports whether the compact bar belongs on screen: some
// session or unsaved finish exists and the dialog is not covering it.
func ShowIndicator(s timerdto.StateOutput, dialogOpen bool) bool {
	if dialogOpen {
		return false
	}
	return s.Pending != nil || (s.Phase != "" && s.Phase != "idle")
}

// Indicator renders the compact bar. label names the review being timed.
func Indicator(s timerdto.StateOutput, label string, at, now time.Time, width int) string {
	var badge, clock, hint string
	switch {
	case s.Pending != nil:
		badge = theme.Hot.Render("■ finished")
		clock = components.FormatDuration(s.Pending.DurationSeconds)
		hint = "o: save result"
	case s.FinishRequested:
		badge = theme.Hot.Render("■ finishing")
		clock = components.FormatDuration(LiveElapsed(s, at, now))
		hint = "o: confirm"
	case s.IsPaused:
		badge = theme.Warning.Render("‖ paused")
		clock = components.FormatDuration(LiveElapsed(s, at, now))
		hint = "o: open"
	default:
		badge = theme.Good.Render("● running")
		clock = components.FormatDuration(LiveElapsed(s, at, now))
		hint = "o: open"
	}
	if label == "" {
		label = s.ReviewID
		if s.Pending != nil {
			label = s.Pending.ReviewID
		}
	}
	left := badge + "  " + theme.Title.Render(clock) + "  " + label
	right := theme.Muted.Render(hint)
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return indicatorStyle.Width(max(width, 1)).MaxHeight(IndicatorLines).
		Render(left + strings.Repeat(" ", gap) + right)
}
