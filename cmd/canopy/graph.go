package main

import (
	"fmt"
	"os"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/aretw0/canopy/internal/presentation/graph"
	"github.com/aretw0/canopy/pkg/adapters/file"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the tree visualization",
	Long:  `Inspects the option tree and outputs a Mermaid diagram (graph TD). With --session, highlights that session's selection.`,
	Run: func(cmd *cobra.Command, args []string) {
		treePath, _ := cmd.Flags().GetString("tree")
		if !cmd.Flags().Changed("tree") && len(args) > 0 {
			treePath = args[0]
		}
		sessionID, _ := cmd.Flags().GetString("session")
		storePath, _ := cmd.Flags().GetString("store")

		engine, err := cli.BuildEngine(cmd.Context(), cli.EngineOptions{TreePath: treePath})
		if err != nil {
			fmt.Printf("Error initializing canopy: %v\n", err)
			os.Exit(1)
		}

		nodes := engine.Inspect()

		var overlay *graph.TreeOverlay
		if sessionID != "" {
			sel, err := file.NewStore(storePath).Load(cmd.Context(), sessionID)
			if err != nil {
				fmt.Printf("Error loading session '%s': %v\n", sessionID, err)
				os.Exit(1)
			}
			overlay = &graph.TreeOverlay{SelectedIDs: sel.IDs}
			domain.Walk(nodes, func(node *domain.OptionNode, _ *domain.OptionNode, _ int) bool {
				if engine.Indeterminate(sel, node.ID) {
					overlay.IndeterminateID = append(overlay.IndeterminateID, node.ID)
				}
				return true
			})
		}

		fmt.Print(graph.GenerateMermaid(nodes, overlay))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("session", "", "Overlay the selection of this session id")
	graphCmd.Flags().String("store", "", "Session store directory (defaults to .canopy/sessions)")
}
