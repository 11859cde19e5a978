// Package player is an interactive terminal front end for one token document.
package player

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hypercastle/internal/animation"
	"hypercastle/internal/color"
	"hypercastle/internal/render"
)

// easeRate scales the frame delta into how far a displayed color moves toward
// its target each frame.
const easeRate = 5

var (
	white = color.Opaque(255, 255, 255)

	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
)

type keyMap struct {
	Pause key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Pause, k.Quit} }
func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Pause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type tickMsg time.Time

type Options struct {
	Title         string
	FrameInterval time.Duration
	GlyphInterval time.Duration
	Random        animation.RandomSource
}

type Model struct {
	title     string
	scheduler *animation.Scheduler
	doc       *render.Model
	interval  time.Duration
	paused    bool
	// sized holds the cells that got a font-size event on the last glyph pass.
	sized     map[int]bool
	displayed map[rune]color.Color
	help      help.Model
}

func New(doc *render.Model, opts Options) Model {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = time.Second / 30
	}
	engine := animation.NewEngine(doc, opts.Random)
	m := Model{
		title:     opts.Title,
		scheduler: animation.NewScheduler(engine, opts.GlyphInterval),
		doc:       doc,
		interval:  opts.FrameInterval,
		sized:     map[int]bool{},
		displayed: make(map[rune]color.Color),
		help:      help.New(),
	}
	for _, class := range doc.Classes {
		if _, ok := m.displayed[class]; !ok {
			m.displayed[class] = targetColor(doc, class)
		}
	}
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Pause):
			m.paused = !m.paused
		}
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tickMsg:
		if !m.paused {
			m.step(m.interval.Seconds())
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the scheduler by one frame and eases the displayed colors.
func (m *Model) step(delta float64) {
	events, ran := m.scheduler.Advance(delta)
	if ran {
		clear(m.sized)
		for _, ev := range events {
			if ev.Kind == animation.EventFontSize {
				m.sized[ev.Cell] = true
			}
		}
	}

	t := 1 - easeRate*delta
	for class, shown := range m.displayed {
		m.displayed[class] = color.Lerp(shown, targetColor(m.doc, class), t)
	}
}

// targetColor is the live color of a class, then its base color, then white.
func targetColor(doc *render.Model, class rune) color.Color {
	if c, ok := doc.Colors.Lookup(class); ok {
		return c
	}
	if c, ok := doc.BaseColor(class); ok {
		return c
	}
	return white
}

func (m Model) View() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(titleStyle.Render(m.title))
		b.WriteString("\n\n")
	}

	background := lipgloss.Color(m.doc.Background.Hex())
	styles := make(map[color.Color]lipgloss.Style)
	for row := 0; row < render.GridHeight; row++ {
		for col := 0; col < render.GridWidth; col++ {
			index := render.Index(row, col)
			c := m.displayed[m.doc.Classes[index]]
			style, ok := styles[c]
			if !ok {
				style = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Background(background)
				styles[c] = style
			}
			if m.sized[index] {
				style = style.Bold(true)
			}
			glyph := m.doc.Glyphs[index]
			if glyph == 0 {
				glyph = render.Blank
			}
			b.WriteString(style.Render(string(glyph)))
		}
		b.WriteByte('\n')
	}

	p := m.doc.Params
	status := fmt.Sprintf("tick %d  mode %d  seed %d", m.doc.Tick, p.Mode, p.Seed)
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(status))
	if m.paused {
		b.WriteString("  ")
		b.WriteString(pausedStyle.Render("paused"))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

// Run plays doc in the terminal until the user quits or ctx is cancelled.
func Run(ctx context.Context, doc *render.Model, opts Options) error {
	p := tea.NewProgram(New(doc, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
