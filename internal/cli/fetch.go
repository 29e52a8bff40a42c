package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	bmerrors "github.com/matzehuels/blockmondrian/pkg/errors"
	"github.com/matzehuels/blockmondrian/pkg/pipeline"
)

// fetchCommand creates the fetch command, which saves a block's
// transaction values for later rendering.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		dir     string
		xlsx    bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <height>",
		Short: "Fetch a block and save its transaction values",
		Long: `Fetch a block by height and save one value per transaction (in BTC) to
{height}_tx_values.txt, or {height}_tx_values.xlsx with --xlsx.

The saved file can be passed to render, layout, stats and preview.`,
		Example: `  blockmondrian fetch 840000
  blockmondrian fetch 840000 -o data --xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			height, err := bmerrors.ValidateHeight(args[0])
			if err != nil {
				return err
			}
			format := pipeline.ExportText
			if xlsx {
				format = pipeline.ExportXLSX
			}
			return c.runFetch(cmd.Context(), height, dir, format, refresh)
		},
	}

	cmd.Flags().StringVarP(&dir, "output", "o", ".", "output directory")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "write an Excel workbook instead of text")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cached block")

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, height int64, dir, format string, refresh bool) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching block %d...", height))
	spinner.Start()

	path, count, err := runner.FetchAndSave(ctx, height, dir, format, refresh)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Fetched block %d", height))

	printSuccess("Saved %d transaction values", count)
	printFile(path)
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s render %s", appName, path))
	return nil
}
