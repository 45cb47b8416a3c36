package main

import (
	"encoding/json"
	"fmt"
	"io"

	"casegraph/domain/casenet"

	"github.com/spf13/cobra"
)

func networkCmd() *cobra.Command {
	var (
		asJSON   bool
		employee bool
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "network <caseId>",
		Short: "Show the network graph of a case",
		Long: "Show the network graph of a case.\n" +
			"With --employee the argument is an employee id and their recent transactions are shown instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()

			var (
				graph casenet.GraphData
				err   error
				title string
			)
			if employee {
				title = "Employee " + args[0]
				graph, err = c.EmployeeNetwork(cmd.Context(), args[0], limit)
			} else {
				title = "Case " + args[0]
				graph, err = c.CaseNetwork(cmd.Context(), args[0])
			}
			if err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(graph)
			}
			printNetwork(out, title, graph)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw graph as JSON")
	cmd.Flags().BoolVar(&employee, "employee", false, "treat the argument as an employee id")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum employee transactions (server default when 0)")
	return cmd
}

func printNetwork(w io.Writer, title string, g casenet.GraphData) {
	fmt.Fprintf(w, "%s\n\n", brand.Sprint(title))

	if g.IsEmpty() {
		warn.Fprintln(w, "  No graph data available")
		return
	}

	fmt.Fprintf(w, "  Nodes %d  Links %d  Clusters %d\n",
		g.Stats.NodeCount, g.Stats.LinkCount, g.Stats.ClusterCount)
	fmt.Fprint(w, "  Risk ")
	for _, level := range casenet.RiskLevels {
		fmt.Fprintf(w, " %s %d", riskLabel(level), g.Stats.RiskDistribution.Count(level))
	}
	fmt.Fprint(w, "\n\n")

	rows := make([][]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		risk := ""
		if level, ok := n.Risk(); ok {
			risk = riskLabel(level)
		}
		amount := ""
		if n.Amount != nil {
			amount = casenet.FormatAmount(*n.Amount)
		}
		rows = append(rows, []string{n.ID, string(n.Type), n.Label, risk, amount})
	}
	table(w, []string{"ID", "TYPE", "LABEL", "RISK", "AMOUNT"}, rows)

	fmt.Fprintln(w)
	links := make([][]string, 0, len(g.Links))
	for _, l := range g.Links {
		links = append(links, []string{l.Source, casenet.HumanizeLinkType(l.Type), l.Target})
	}
	table(w, []string{"SOURCE", "RELATION", "TARGET"}, links)
}
