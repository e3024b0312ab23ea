package main

import (
	"fmt"
	"os"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/spf13/cobra"
)

// pickCmd represents the pick command
var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Run the interactive tree picker",
	Long:  `Starts the selection engine in interactive mode against the configured tree document.`,
	Run: func(cmd *cobra.Command, args []string) {
		treePath, _ := cmd.Flags().GetString("tree")
		if !cmd.Flags().Changed("tree") && len(args) > 0 {
			treePath = args[0]
		}
		debug, _ := cmd.Flags().GetBool("debug")
		mode, _ := cmd.Flags().GetString("mode")
		summary, _ := cmd.Flags().GetString("summary")
		sessionID, _ := cmd.Flags().GetString("session")
		storePath, _ := cmd.Flags().GetString("store")
		watchMode, _ := cmd.Flags().GetBool("watch")
		jsonMode, _ := cmd.Flags().GetBool("json")

		if watchMode && jsonMode {
			fmt.Println("Error: --watch and --json cannot be used together.")
			os.Exit(1)
		}

		if watchMode {
			if err := cli.RunWatch(treePath); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		opts := cli.PickOptions{
			Engine: cli.EngineOptions{
				TreePath: treePath,
				Mode:     mode,
				Summary:  summary,
				Debug:    debug,
			},
			SessionID: sessionID,
			StorePath: storePath,
			JSONMode:  jsonMode,
		}
		if err := cli.RunPick(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(pickCmd)

	pickCmd.Flags().String("mode", "", "Selection mode override: 'single' or 'multiple'")
	pickCmd.Flags().String("summary", "join", "Summary style: 'join' or 'count'")
	pickCmd.Flags().String("session", "", "Persist the selection under this session id")
	pickCmd.Flags().String("store", "", "Session store directory (defaults to .canopy/sessions)")
	pickCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	pickCmd.Flags().BoolP("watch", "w", false, "Watch the tree document and revalidate on change")

	// Make 'pick' the default if no command is provided.
	rootCmd.Run = pickCmd.Run
}
