package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <caseId> [nodeId]",
		Short: "Show the inspector panel for a node of a case network",
		Long: "Show the inspector panel for a node of a case network.\n" +
			"Without a node id the empty panel and the list of node ids are shown.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadSession(cmd, args[0], 800, 600)
			if err != nil {
				return err
			}
			view := session.View()

			if len(args) == 2 && !view.ClickNode(args[1]) {
				return fmt.Errorf("node %q is not in case %s", args[1], args[0])
			}

			out := cmd.OutOrStdout()
			panel := view.Inspector()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(panel)
			}

			if err := panel.WriteText(out); err != nil {
				return err
			}
			if panel.Empty {
				fmt.Fprintln(out)
				for _, n := range view.Data().Nodes {
					subtle.Fprintf(out, "  %s\n", n.ID)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the panel as JSON")
	return cmd
}
