package entries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"grocerytracker/cmd/grocery/config"
	"grocerytracker/cmd/grocery/output"
	"grocerytracker/internal/models"

	"github.com/spf13/cobra"
)

// ==========================
// Init Entries
// ==========================

// InitEntries registers grocery entry commands on the root command.
func InitEntries(rootCmd *cobra.Command) {
	entriesCmd := &cobra.Command{
		Use:   "entries",
		Short: "Manage grocery entries",
	}

	entriesCmd.AddCommand(
		addEntryCmd(),
		listEntriesCmd(),
		deleteEntryCmd(),
		summaryCmd(),
	)

	rootCmd.AddCommand(entriesCmd)
}

// ==========================
// ADD
// ==========================
func addEntryCmd() *cobra.Command {
	var item, date string
	var amount float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a grocery entry",
		Long:  "Add a grocery entry. Negative amounts are expenses, anything else is income.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if item == "" {
				return fmt.Errorf("--item is required")
			}
			if !cmd.Flags().Changed("amount") {
				return fmt.Errorf("--amount is required")
			}
			if date == "" {
				date = time.Now().Format(models.DateLayout)
			}

			var resp struct {
				Data models.GroceryEntry `json:"data"`
			}
			payload := map[string]any{"item": item, "amount": amount, "date": date}
			if err := config.CallJSON(http.MethodPost, "/entries", payload, &resp, true); err != nil {
				return fmt.Errorf("failed to add entry: %w", err)
			}

			fmt.Printf("Entry %s added: %s %.2f on %s\n", resp.Data.ID, resp.Data.Item, resp.Data.Amount, resp.Data.Date)
			return nil
		},
	}

	cmd.Flags().StringVar(&item, "item", "", "Item name")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Signed amount, negative for expenses")
	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD, defaults to today")
	return cmd
}

// ==========================
// LIST
// ==========================
func listEntriesCmd() *cobra.Command {
	var date string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List grocery entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/entries"
			if date != "" {
				path += "?" + url.Values{"date": {date}}.Encode()
			}

			var resp struct {
				Count int                   `json:"count"`
				Data  []models.GroceryEntry `json:"data"`
			}
			if err := config.CallJSON(http.MethodGet, path, nil, &resp, true); err != nil {
				return fmt.Errorf("failed to list entries: %w", err)
			}

			if asJSON {
				b, _ := json.MarshalIndent(resp.Data, "", "  ")
				fmt.Println(string(b))
				return nil
			}

			if len(resp.Data) == 0 {
				fmt.Println("No entries found.")
				return nil
			}

			// The API does not order entries; show them by date for reading.
			sort.SliceStable(resp.Data, func(i, j int) bool {
				return resp.Data[i].Date < resp.Data[j].Date
			})
			rows := make([][]interface{}, 0, len(resp.Data))
			for _, e := range resp.Data {
				rows = append(rows, []interface{}{e.ID, e.Date, e.Item, fmt.Sprintf("%.2f", e.Amount)})
			}
			output.RenderTable([]string{"ID", "Date", "Item", "Amount"}, rows, "", "", "Count", resp.Count)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Only list entries of this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")
	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteEntryCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a grocery entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadToken(); err != nil {
				return config.ErrNotLoggedIn
			}

			done, err := output.ConfirmDelete(context.Background(), cmd.InOrStdin(), cmd.OutOrStdout(), "entry "+args[0], yes,
				func(_ context.Context, _ string) error {
					return config.CallJSON(http.MethodDelete, "/entries/"+url.PathEscape(args[0]), nil, nil, true)
				})
			if err != nil {
				return fmt.Errorf("failed to delete entry: %w", err)
			}
			if !done {
				fmt.Println("Cancelled.")
				return nil
			}

			fmt.Printf("Entry %s deleted.\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

// ==========================
// SUMMARY
// ==========================
func summaryCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income, expense and balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/summary"
			if date != "" {
				path += "?" + url.Values{"date": {date}}.Encode()
			}

			var resp struct {
				Data models.Summary `json:"data"`
			}
			if err := config.CallJSON(http.MethodGet, path, nil, &resp, true); err != nil {
				return fmt.Errorf("failed to load summary: %w", err)
			}

			output.RenderTable(
				[]string{"Income", "Expense", "Balance"},
				[][]interface{}{{
					fmt.Sprintf("%.2f", resp.Data.Income),
					fmt.Sprintf("%.2f", resp.Data.Expense),
					fmt.Sprintf("%.2f", resp.Data.Balance),
				}},
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Only summarize this date (YYYY-MM-DD)")
	return cmd
}
