package loans

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/loeitech/booker/cmd/cli/api"
	"github.com/loeitech/booker/cmd/cli/config"
	"github.com/loeitech/booker/cmd/cli/output"
)

type historyEntry struct {
	ID         int    `json:"id"`
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
	Status     string `json:"status"`
	DueDate    string `json:"due_date"`
	ReturnDate string `json:"return_date"`
}

type borrowedEntry struct {
	ID         int    `json:"id"`
	Username   string `json:"username"`
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
	DueDate    string `json:"due_date"`
	CreatedAt  string `json:"created_at"`
}

// InitLoans registers borrow, return, history and borrowed on the root command.
func InitLoans(rootCmd *cobra.Command) {
	rootCmd.AddCommand(
		borrowCmd(),
		returnCmd(),
		historyCmd(),
		borrowedCmd(),
	)
}

// ==========================
// BORROW
// ==========================
func borrowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "borrow [book-id]",
		Short: "Borrow a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.LoadSession()
			if err != nil {
				return fmt.Errorf("please login first")
			}
			bookID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid book id: %s", args[0])
			}

			data, status, err := api.PostJSON("/borrow", map[string]int{
				"user_id": s.ID,
				"book_id": bookID,
			})
			if err != nil {
				return err
			}
			if status != 201 {
				return fmt.Errorf("%s", api.ErrorMessage(data, status))
			}

			var out struct {
				Transaction struct {
					ID      int    `json:"id"`
					DueDate string `json:"due_date"`
				} `json:"transaction"`
			}
			_ = json.Unmarshal(data, &out)
			fmt.Printf("Borrow successful. Transaction %d, due %s.\n",
				out.Transaction.ID, formatDate(out.Transaction.DueDate))
			return nil
		},
	}
}

// ==========================
// RETURN
// ==========================
func returnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return [transaction-id]",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadSession(); err != nil {
				return fmt.Errorf("please login first")
			}
			txID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid transaction id: %s", args[0])
			}

			data, status, err := api.PostJSON("/return", map[string]int{
				"transaction_id": txID,
			})
			if err != nil {
				return err
			}
			if status != 200 {
				return fmt.Errorf("%s", api.ErrorMessage(data, status))
			}

			fmt.Println("Return successful.")
			return nil
		},
	}
}

// ==========================
// HISTORY
// ==========================
func historyCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show your borrow history",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.LoadSession()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			data, status, err := api.Get(fmt.Sprintf("/history/%d", s.ID))
			if err != nil {
				return err
			}
			if status != 200 {
				return fmt.Errorf("%s", api.ErrorMessage(data, status))
			}

			var entries []historyEntry
			if err := json.Unmarshal(data, &entries); err != nil {
				return fmt.Errorf("invalid response: %w", err)
			}

			if asJSON {
				b, _ := json.MarshalIndent(entries, "", "  ")
				fmt.Println(string(b))
				return nil
			}

			rows := make([][]interface{}, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []interface{}{
					e.ID, e.BookTitle, e.BookAuthor, e.Status,
					formatDate(e.DueDate), formatDate(e.ReturnDate),
				})
			}
			output.RenderTable([]string{"ID", "Book", "Author", "Status", "Due", "Returned"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a table")
	return cmd
}

// ==========================
// BORROWED (admin)
// ==========================
func borrowedCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "borrowed",
		Short: "List all currently borrowed books (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.LoadSession()
			if err != nil {
				return fmt.Errorf("please login first")
			}
			if !s.IsAdmin() {
				return fmt.Errorf("admin access required")
			}

			data, status, err := api.Get("/admin/borrowed-books")
			if err != nil {
				return err
			}
			if status != 200 {
				return fmt.Errorf("%s", api.ErrorMessage(data, status))
			}

			var entries []borrowedEntry
			if err := json.Unmarshal(data, &entries); err != nil {
				return fmt.Errorf("invalid response: %w", err)
			}

			if asJSON {
				b, _ := json.MarshalIndent(entries, "", "  ")
				fmt.Println(string(b))
				return nil
			}

			rows := make([][]interface{}, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []interface{}{
					e.ID, e.Username, e.BookTitle, e.BookAuthor,
					formatDate(e.DueDate), formatDate(e.CreatedAt),
				})
			}
			output.RenderTable([]string{"ID", "Member", "Book", "Author", "Due", "Borrowed"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a table")
	return cmd
}

// formatDate trims an RFC 3339 timestamp down to its date. Unparseable or
// empty values pass through unchanged.
func formatDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}
