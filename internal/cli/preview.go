package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockmondrian/pkg/classify"
	"github.com/matzehuels/blockmondrian/pkg/pipeline"
	"github.com/matzehuels/blockmondrian/pkg/render/mosaic"
	"github.com/matzehuels/blockmondrian/pkg/render/mosaic/sink"
	"github.com/matzehuels/blockmondrian/pkg/render/mosaic/styles"
)

// previewChrome is the number of terminal rows taken by the title and help.
const previewChrome = 3

// =============================================================================
// PreviewModel - Terminal mosaic
// =============================================================================

// PreviewModel is the bubbletea model drawing a mosaic that fills the
// terminal. Every resize classifies, packs and fits the values again.
type PreviewModel struct {
	Title      string
	Values     []float64
	Thresholds classify.Thresholds
	Color      string
	Padding    float64

	Styles   []string
	StyleIdx int

	Width, Height int

	layout *pipeline.Layout
	view   string
	err    error
}

// NewPreviewModel creates a preview starting with the given style.
func NewPreviewModel(title string, values []float64, opts pipeline.Options) PreviewModel {
	m := PreviewModel{
		Title:      title,
		Values:     values,
		Thresholds: opts.Thresholds,
		Color:      opts.Color,
		Padding:    opts.Viewport().Padding,
		Styles:     []string{styles.NameSolid, styles.NameSpectrum},
	}
	for i, s := range m.Styles {
		if s == opts.Style {
			m.StyleIdx = i
		}
	}
	return m
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "s", "tab":
			m.StyleIdx = (m.StyleIdx + 1) % len(m.Styles)
			m.redraw()
		case "p":
			if m.Padding > 0 {
				m.Padding = 0
			} else {
				m.Padding = mosaic.DefaultPadding
			}
			m.relayout()
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.relayout()
	}
	return m, nil
}

// relayout recomputes the packing from the values and redraws.
func (m *PreviewModel) relayout() {
	m.layout = pipeline.GenerateLayout(m.Values, m.Thresholds)
	m.redraw()
}

// redraw fits the current layout to the terminal and draws it.
func (m *PreviewModel) redraw() {
	if m.layout == nil {
		return
	}
	style, err := styles.Parse(m.Styles[m.StyleIdx], m.Color)
	if err != nil {
		m.err = err
		return
	}
	rows := m.Height - previewChrome
	if rows < 1 || m.Width < 1 {
		m.view = ""
		return
	}
	frame := m.layout.Frame(sink.TerminalViewport(m.Width, rows, m.Padding))
	m.view = sink.RenderANSI(frame, sink.WithANSIStyle(style))
}

func (m PreviewModel) View() string {
	if m.err != nil {
		return StyleWarning.Render(m.err.Error()) + "\n"
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.Title))
	if m.layout != nil {
		st := m.layout.Stats()
		b.WriteString(StyleDim.Render(fmt.Sprintf("  %d transactions · %d placed · %d skipped · %s",
			st.Count, st.Placed, st.Skipped, m.Styles[m.StyleIdx])))
	}
	b.WriteString("\n")
	b.WriteString(m.view)
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("s style  p padding  q quit"))
	return b.String()
}

// =============================================================================
// Command
// =============================================================================

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "preview <file|height>",
		Short: "Draw the mosaic in the terminal",
		Long: `Draw the mosaic in the terminal using colored half blocks. The mosaic is
laid out again whenever the window is resized. Press s to switch between the
solid and spectrum styles, p to toggle padding and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			return c.runPreview(cmd.Context(), opts)
		},
	}

	flags.bindLayout(cmd)
	cmd.Flags().StringVar(&flags.style, "style", pipeline.DefaultStyle, "initial fill style: solid (default), spectrum")
	cmd.Flags().StringVar(&flags.color, "color", "", "base color as a name or #rrggbb")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, opts pipeline.Options) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if err := opts.ValidateForLayout(); err != nil {
		return err
	}
	if _, err := opts.ParseStyle(); err != nil {
		return err
	}
	values, err := runner.LoadValues(ctx, opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewPreviewModel(describeArg(opts), values, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
