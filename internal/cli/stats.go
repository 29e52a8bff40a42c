package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockmondrian/pkg/pipeline"
	"github.com/matzehuels/blockmondrian/pkg/render/chart"
)

// statsCommand creates the stats command, which summarizes how a block's
// transactions fall into buckets and how many squares were packed.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		flags     renderFlags
		chartPath string
	)

	cmd := &cobra.Command{
		Use:   "stats <file|height>",
		Short: "Show the bucket histogram and packing statistics",
		Example: `  blockmondrian stats 840000_tx_values.txt
  blockmondrian stats 840000 --chart buckets.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			return c.runStats(cmd.Context(), opts, chartPath)
		},
	}

	flags.bindLayout(cmd)
	cmd.Flags().StringVar(&chartPath, "chart", "", "also write an HTML bar chart to this file")

	return cmd
}

func (c *CLI) runStats(ctx context.Context, opts pipeline.Options, chartPath string) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	values, err := runner.LoadValues(ctx, opts)
	if err != nil {
		return err
	}
	l, cached, err := runner.LayoutWithCacheInfo(ctx, values, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	counts := l.Histogram()
	fmt.Fprintln(c.out, StyleTitle.Render(describeArg(opts)))
	fmt.Fprintln(c.out, histogramTable(counts, chart.BucketLabels(l.Thresholds)))
	printKeyValue("side", strconv.FormatFloat(l.Packing.Side, 'f', -1, 64))
	printStats(l.Stats(), cached)

	if chartPath != "" {
		out, err := openOutput(chartPath, c.out)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := chart.RenderHistogram(out, describeArg(opts), counts, l.Thresholds); err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		printFile(chartPath)
	}
	return nil
}

// histogramTable lays out one row per bucket with its count and share.
func histogramTable(counts []int, labels []string) string {
	total := 0
	for _, n := range counts {
		total += n
	}

	rows := make([][]string, len(counts))
	for i, n := range counts {
		share := 0.0
		if total > 0 {
			share = 100 * float64(n) / float64(total)
		}
		rows[i] = []string{strconv.Itoa(i + 1), labels[i], strconv.Itoa(n), fmt.Sprintf("%.1f%%", share)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Bucket", "Amount (BTC)", "Transactions", "Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 2 && counts[row] > 0:
				return StyleNumber.PaddingLeft(1).PaddingRight(1)
			case counts[row] == 0:
				return StyleDim.PaddingLeft(1).PaddingRight(1)
			}
			return StyleValue.PaddingLeft(1).PaddingRight(1)
		}).
		Render()
}
