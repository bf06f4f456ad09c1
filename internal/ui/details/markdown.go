package details

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	styleOnce sync.Once
	styleName string
)

// DetectStyle picks the dark or light markdown style from the terminal
// background. The terminal is queried once; call this before the
// program takes over stdin.
func DetectStyle() string {
	styleOnce.Do(func() {
		styleName = styles.LightStyle
		if lipgloss.HasDarkBackground() {
			styleName = styles.DarkStyle
		}
	})
	return styleName
}

// markdown renders todo descriptions, reusing one glamour renderer
// until the wrap width changes.
type markdown struct {
	width    int
	renderer *glamour.TermRenderer
}

// Render renders content for the terminal, falling back to the raw text
// when glamour fails.
func (md *markdown) Render(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	if md.renderer == nil || md.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(DetectStyle()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		md.renderer, md.width = r, width
	}

	rendered, err := md.renderer.Render(content)
	if err != nil {
		return content
	}

	return strings.Trim(rendered, "\n")
}
