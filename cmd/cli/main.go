package main

import (
	"fmt"
	"os"

	"github.com/loeitech/booker/cmd/cli/auth"
	"github.com/loeitech/booker/cmd/cli/books"
	"github.com/loeitech/booker/cmd/cli/loans"
	"github.com/loeitech/booker/cmd/cli/members"
	"github.com/loeitech/booker/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()

	auth.InitAuth(rootCmd)
	books.InitBooks(rootCmd)
	loans.InitLoans(rootCmd)
	members.InitMembers(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
