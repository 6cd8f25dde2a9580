package chat

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// eraseLine moves the cursor up one line and clears it.
const eraseLine = "\x1b[1A\x1b[2K"

// TerminalRenderer prints transcript events to a terminal. The Indonesian
// block of a bilingual answer is printed in its own color, set off from the
// English block.
type TerminalRenderer struct {
	w  io.Writer
	mu sync.Mutex

	// ShowUser controls whether the user's own messages are echoed.
	ShowUser bool

	header     *color.Color
	english    *color.Color
	indonesian *color.Color
	loading    *color.Color
	label      *color.Color

	loadingShown bool
}

// NewTerminalRenderer creates a renderer writing to w.
func NewTerminalRenderer(w io.Writer) *TerminalRenderer {
	return &TerminalRenderer{
		w:          w,
		header:     color.New(color.Bold),
		english:    color.New(color.FgWhite),
		indonesian: color.New(color.FgCyan, color.Italic),
		loading:    color.New(color.FgYellow),
		label:      color.New(color.Faint),
	}
}

// Observe is a transcript Observer.
func (r *TerminalRenderer) Observe(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Kind {
	case EventAdded:
		r.render(ev.Message)
	case EventRemoved:
		if ev.Message.Loading && r.loadingShown {
			if !color.NoColor {
				fmt.Fprint(r.w, eraseLine)
			}
			r.loadingShown = false
		}
	}
}

func (r *TerminalRenderer) render(m Message) {
	if m.Loading {
		r.loading.Fprintln(r.w, LoadingText)
		r.loadingShown = true
		return
	}
	if m.Sender == SenderUser && !r.ShowUser {
		return
	}

	r.header.Fprintf(r.w, "%s:\n", m.Name)
	for i, b := range m.Blocks {
		if i > 0 {
			fmt.Fprintln(r.w)
		}
		switch b.Language {
		case LanguageIndonesian:
			r.label.Fprintln(r.w, "[Bahasa Indonesia]")
			r.indonesian.Fprintln(r.w, b.Text)
		case LanguageEnglish:
			r.label.Fprintln(r.w, "[English]")
			r.english.Fprintln(r.w, b.Text)
		default:
			fmt.Fprintln(r.w, b.Text)
		}
	}
	fmt.Fprintln(r.w, strings.Repeat("-", 40))
}
