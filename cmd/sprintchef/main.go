// Command sprintchef plays, simulates and inspects kitchen apprenticeship
// runs.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/roach88/sprintchef/internal/cli"
)

func main() {
	// A missing .env is fine; SPRINTCHEF_* may come from the real environment.
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
