package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"casegraph/application/queries"
	"casegraph/domain/casenet"

	"github.com/spf13/cobra"
)

func relatedCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "related <caseId>",
		Short: "List transactions similar to a case's transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newClient().RelatedTransactions(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printRelated(out, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func printRelated(w io.Writer, r *queries.GetRelatedTransactionsResult) {
	fmt.Fprintf(w, "%s %s\n\n", brand.Sprint("Related transactions"), subtle.Sprintf("(case %s, transaction %s)", r.CaseID, r.TransactionID))

	if len(r.Related) == 0 {
		warn.Fprintln(w, "  No similar transactions")
		return
	}

	rows := make([][]string, 0, len(r.Related))
	for _, rel := range r.Related {
		merchant := ""
		if rel.Merchant != nil {
			merchant = rel.Merchant.Name
		}
		rows = append(rows, []string{
			rel.Transaction.ID,
			casenet.FormatAmount(rel.Transaction.Amount),
			merchant,
			strconv.Itoa(rel.HoursDiff) + "h",
			strconv.Itoa(rel.AmountDiffPct) + "%",
			scoreLabel(rel.Score),
		})
	}
	table(w, []string{"TRANSACTION", "AMOUNT", "MERCHANT", "TIME", "DIFF", "SCORE"}, rows)
}

func scoreLabel(score int) string {
	s := strconv.Itoa(score)
	switch {
	case score >= 80:
		return bad.Sprint(s)
	case score >= 50:
		return warn.Sprint(s)
	default:
		return good.Sprint(s)
	}
}
