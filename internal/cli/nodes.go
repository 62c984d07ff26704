package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/orchfleet/orchd/internal/client"
	"github.com/spf13/cobra"
)

// NewNodesCmd creates the 'nodes' command for listing fleet
// connections, named and unnamed alike.
func NewNodesCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "List connected fleet members",
		Long: `List every node currently connected to orchd.

Unregistered connections are shown by their pre-registration token
rather than a name, so an operator can tell two not-yet-registered
nodes apart before either calls Register.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(a.SocketPath())
			if err != nil {
				return err
			}
			defer c.Close()

			nodes, err := c.ListNodes(cmd.Context())
			if err != nil {
				return err
			}

			displayNodes(cmd.OutOrStdout(), nodes)
			return nil
		},
	}

	return cmd
}

// displayNodes renders nodes as a simple aligned table.
func displayNodes(w io.Writer, nodes []client.NodeSnapshot) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tNAME\tREGISTERED")
	for _, n := range nodes {
		name := n.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\n", n.Token, name, n.Registered)
	}
	tw.Flush()
}
