package cli

import (
	"fmt"
	"strings"
)

// renderLifecycleRail draws the session phases as a left-to-right chain with
// everything before the current phase marked done.
func renderLifecycleRail(theme tuiTheme, phases []string, current int) string {
	if len(phases) == 0 {
		return ""
	}

	segments := make([]string, 0, len(phases)*2-1)
	for i, phase := range phases {
		var label string
		switch {
		case i < current:
			label = theme.railDone.Render("[" + phase + "]")
		case i == current:
			label = theme.railCurrent.Render("[" + phase + "]")
		default:
			label = theme.railPending.Render("[" + phase + "]")
		}
		segments = append(segments, label)
		if i < len(phases)-1 {
			connector := theme.railPending.Render("->")
			if i < current {
				connector = theme.railDone.Render("->")
			}
			segments = append(segments, connector)
		}
	}

	return strings.Join(segments, " ")
}

// renderActionCard is the bordered prompt/help card used for the upload
// prompt and the controls overlay.
func renderActionCard(theme tuiTheme, title, hint, body string, width int) string {
	if width < 20 {
		width = 20
	}
	card := strings.Builder{}
	card.WriteString(theme.subtitle.Render(title))
	card.WriteString("\n")
	card.WriteString(theme.muted.Render(hint))
	card.WriteString("\n")
	card.WriteString(body)
	return theme.panel.Width(width).Render(card.String())
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return fmt.Sprintf("%s...", string(r[:limit-3]))
}

// splitColumns divides the content width between the conversation column and
// the documents sidebar.
func splitColumns(total int) (left, right int) {
	left = int(float64(total) * 0.7)
	if left < 40 {
		return total, 0
	}
	right = total - left
	if right < 26 {
		right = 26
		left = total - right
	}
	return left, right
}
