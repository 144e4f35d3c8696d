package main

import (
	"fmt"
	"os"

	"github.com/minz/minzc/pkg/version"
	"github.com/spf13/cobra"
)

var (
	showVersion     bool
	showVersionFull bool
)

var rootCmd = &cobra.Command{
	Use:   "mz",
	Short: "MinZ instruction scheduler " + version.GetVersion(),
	Long: `mz - ant colony instruction scheduler for the MinZ compiler
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
Loads a function's MIR (the textual intermediate representation the rest
of the MinZ toolchain emits), reschedules each basic block with an ant
colony optimizer tuned for the Z80 machine model, and writes the
rescheduled MIR back out.

  mz schedule func.mir              # schedule in place
  mz schedule func.mir -o out.mir   # schedule to a new file
  mz schedule func.mir --aco-trace  # print per-iteration progress

For documentation and examples, see:
  https://github.com/minz-lang/minzc`,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersion())
			return
		}
		if showVersionFull {
			fmt.Println(version.GetFullVersion())
			return
		}
		cmd.Help()
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "show version")
	rootCmd.Flags().BoolVar(&showVersionFull, "version-full", false, "show full version info")
	rootCmd.AddCommand(newScheduleCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
