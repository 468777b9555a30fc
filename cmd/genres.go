package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/moviedeck/display"
	"github.com/s0up4200/moviedeck/genre"
)

// genresCmd represents the genres command
var genresCmd = &cobra.Command{
	Use:     "genres",
	Aliases: []string{"categories"},
	Short:   "List the category names accepted by \"movies category\"",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print(display.NewConsoleFormatter("").FormatGenres(genre.All()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(genresCmd)
}
