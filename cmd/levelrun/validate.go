package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/levelplan/levelplan/internal/data"
	"github.com/levelplan/levelplan/internal/level"
	"github.com/levelplan/levelplan/internal/scripting"
)

var validateCmd = &cobra.Command{
	Use:   "validate <level.yaml>",
	Short: "Compile a level file without playing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		lua, err := scripting.NewEngine(cfg.Scripting.Dir, nil)
		if err != nil {
			return err
		}
		defer lua.Close()

		lvl, err := data.LoadLevel(args[0])
		if err != nil {
			return err
		}
		if _, err := data.CompileLevel(lvl, level.Catalog(lua, nil)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "level %q is valid\n", lvl.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
