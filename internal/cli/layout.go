package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockmondrian/pkg/mondrian"
	"github.com/matzehuels/blockmondrian/pkg/pipeline"
)

// layoutOutput is the JSON document printed by the layout command.
type layoutOutput struct {
	Source     string         `json:"source"`
	Side       float64        `json:"side"`
	Thresholds []float64      `json:"thresholds"`
	Squares    []layoutSquare `json:"squares"`
	Stats      mondrian.Stats `json:"stats"`
}

// layoutSquare is one input value with its placement, if any. Value is
// omitted when it is not a finite number.
type layoutSquare struct {
	Index  int                 `json:"index"`
	Value  *float64            `json:"value,omitempty"`
	Bucket int                 `json:"bucket"`
	Placed *mondrian.Placement `json:"placement"`
}

// layoutCommand creates the layout command, which prints the packing of a
// block in layout units, before any viewport scaling.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   renderFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout <file|height>",
		Short: "Print square placements as JSON",
		Long: `Classify every transaction value and pack one square per value, then print
the placements as JSON. Positions and sides are in layout units; squares that
found no free region have a null placement.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), opts, output, noCache)
		},
	}

	flags.bindLayout(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	values, err := runner.LoadValues(ctx, opts)
	if err != nil {
		return err
	}
	l, _, err := runner.LayoutWithCacheInfo(ctx, values, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	data, err := json.MarshalIndent(newLayoutOutput(describeArg(opts), l), "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := c.writeFile(output, append(data, '\n')); err != nil {
		return err
	}
	if output != "-" {
		printSuccess("Layout complete")
		printFile(output)
		printStats(l.Stats(), false)
	}
	return nil
}

func newLayoutOutput(source string, l *pipeline.Layout) layoutOutput {
	out := layoutOutput{
		Source:     source,
		Side:       l.Packing.Side,
		Thresholds: l.Thresholds,
		Squares:    make([]layoutSquare, len(l.Values)),
		Stats:      l.Packing.Stats,
	}
	for i, v := range l.Values {
		sq := layoutSquare{
			Index:  i,
			Bucket: l.Buckets[i],
			Placed: l.Packing.Placements[i],
		}
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sq.Value = &v
		}
		out.Squares[i] = sq
	}
	return out
}
