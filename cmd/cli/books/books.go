package books

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/loeitech/booker/cmd/cli/api"
	"github.com/loeitech/booker/cmd/cli/config"
	"github.com/loeitech/booker/cmd/cli/output"
)

type book struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Quantity   int    `json:"quantity"`
	StatusText string `json:"status_text"`
}

// ==========================
// Init Books
// ==========================
func InitBooks(rootCmd *cobra.Command) {

	booksCmd := &cobra.Command{
		Use:   "books",
		Short: "Browse and manage books",
	}

	booksCmd.AddCommand(
		listBooksCmd(),
		addBookCmd(),
		updateBookCmd(),
		deleteBookCmd(),
	)

	rootCmd.AddCommand(booksCmd)
}

// ==========================
// LIST
// ==========================
func listBooksCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all books",
		Run: func(cmd *cobra.Command, args []string) {
			data, status, err := api.Get("/books")
			if err != nil {
				fmt.Println(err)
				return
			}
			if status != 200 {
				fmt.Println(api.ErrorMessage(data, status))
				return
			}

			var items []book
			if err := json.Unmarshal(data, &items); err != nil {
				fmt.Println("Invalid response:", err)
				return
			}

			if asJSON {
				b, _ := json.MarshalIndent(items, "", "  ")
				fmt.Println(string(b))
				return
			}

			rows := make([][]interface{}, 0, len(items))
			for _, b := range items {
				rows = append(rows, []interface{}{b.ID, b.Title, b.Author, b.Quantity, b.StatusText})
			}
			output.RenderTable([]string{"ID", "Title", "Author", "Quantity", "Status"}, rows)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a table")
	return cmd
}

// ==========================
// ADD
// ==========================
func addBookCmd() *cobra.Command {
	var title string
	var author string
	var quantity int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(); err != nil {
				return err
			}

			data, status, err := api.PostJSON("/books", map[string]interface{}{
				"title":    title,
				"author":   author,
				"quantity": quantity,
			})
			if err != nil {
				return err
			}
			if status != 201 {
				return fmt.Errorf("%s", api.ErrorMessage(data, status))
			}

			var created book
			_ = json.Unmarshal(data, &created)
			fmt.Printf("Book added with ID %d.\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringVar(&author, "author", "", "book author")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "number of copies")

	return cmd
}

// ==========================
// UPDATE
// ==========================
func updateBookCmd() *cobra.Command {
	var title string
	var author string
	var quantity int

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update a book (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(); err != nil {
				return err
			}
			if _, err := strconv.Atoi(args[0]); err != nil {
				return fmt.Errorf("invalid book id: %s", args[0])
			}

			data, status, err := api.PutJSON("/books/"+args[0], map[string]interface{}{
				"title":    title,
				"author":   author,
				"quantity": quantity,
			})
			if err != nil {
				return err
			}
			if status != 200 {
				return fmt.Errorf("%s", api.ErrorMessage(data, status))
			}

			fmt.Println("Book updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringVar(&author, "author", "", "book author")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "number of copies")

	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteBookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a book (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(); err != nil {
				return err
			}

			data, status, err := api.Delete("/books/" + args[0])
			if err != nil {
				return err
			}
			if status != 200 {
				return fmt.Errorf("%s", api.ErrorMessage(data, status))
			}

			fmt.Println("Book deleted successfully.")
			return nil
		},
	}
}

func requireAdmin() error {
	s, err := config.LoadSession()
	if err != nil {
		return fmt.Errorf("please login first")
	}
	if !s.IsAdmin() {
		return fmt.Errorf("admin access required")
	}
	return nil
}
