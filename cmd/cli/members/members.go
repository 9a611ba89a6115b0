package members

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loeitech/booker/cmd/cli/api"
	"github.com/loeitech/booker/cmd/cli/config"
	"github.com/loeitech/booker/cmd/cli/output"
)

type member struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// InitMembers registers the members command on the root command.
func InitMembers(rootCmd *cobra.Command) {
	rootCmd.AddCommand(listMembersCmd())
}

func listMembersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "members",
		Short: "List registered members (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.LoadSession()
			if err != nil {
				return fmt.Errorf("please login first")
			}
			if !s.IsAdmin() {
				return fmt.Errorf("admin access required")
			}

			data, status, err := api.Get("/users")
			if err != nil {
				return err
			}
			if status != 200 {
				return fmt.Errorf("%s", api.ErrorMessage(data, status))
			}

			var items []member
			if err := json.Unmarshal(data, &items); err != nil {
				return fmt.Errorf("invalid response: %w", err)
			}

			if asJSON {
				b, _ := json.MarshalIndent(items, "", "  ")
				fmt.Println(string(b))
				return nil
			}

			rows := make([][]interface{}, 0, len(items))
			for _, m := range items {
				rows = append(rows, []interface{}{m.ID, m.Username, m.Role})
			}
			output.RenderTable([]string{"ID", "Username", "Role"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a table")
	return cmd
}
