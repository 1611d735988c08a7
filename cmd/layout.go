package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/storesim/storesim/sim/facility"
)

// layoutCmd groups store layout utilities
var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Inspect store layouts",
}

// layoutValidateCmd checks a layout file and prints what it contains
var layoutValidateCmd = &cobra.Command{
	Use:   "validate [layout.yaml]",
	Short: "Validate a store layout (default: the bundled layout)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		if err := describeLayout(path, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Invalid layout: %v", err)
		}
	},
}

// describeLayout builds the layout at path and writes a short report to w.
func describeLayout(path string, w io.Writer) error {
	layout := facility.DefaultLayout()
	if path != "" {
		var err error
		if layout, err = facility.LoadLayout(path); err != nil {
			return err
		}
	}
	g, err := layout.Build()
	if err != nil {
		return err
	}

	name := layout.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(w, "Layout %s: %d nodes, %d edges\n", name, g.Len(), len(g.Edges()))
	for _, c := range []facility.Category{facility.CategoryEntrance, facility.CategoryExit, facility.CategoryCheckout, facility.CategoryShelf} {
		fmt.Fprintf(w, "  %-9s %v\n", c+":", g.NodesOf(c))
	}
	fmt.Fprintf(w, "  items:    %s\n", strings.Join(g.ItemKinds(), ", "))
	fmt.Fprintf(w, "  stations: %v\n", layout.Stations)
	return nil
}

func init() {
	layoutCmd.AddCommand(layoutValidateCmd)
	rootCmd.AddCommand(layoutCmd)
}
