package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockmondrian/internal/server"
)

// serveCommand creates the serve command, which runs the HTTP server until
// interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve mosaics over HTTP",
		Long: `Run an HTTP server with an upload form at /, POST /render for uploaded values
files, GET /blocks/{height}/values and GET /blocks/{height}/render.{format}.

Render defaults, the request body limit and the render timeout come from the
config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			printSuccess("Serving on %s", StyleLink.Render("http://"+displayAddr(c.Config.Server.Addr)))
			return server.New(runner, c.Config, c.Logger).ListenAndServe(ctx, c.Config.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

// displayAddr fills in localhost for addresses without a host.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
