package main

import (
	"fmt"
	"os"

	"github.com/aretw0/canopy/pkg/adapters/file"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the tree document for consistency",
	Long:  `Parses the tree document and reports duplicate ids, empty labels and unknown selection modes.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Tree is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	treePath, _ := cmd.Flags().GetString("tree")
	if !cmd.Flags().Changed("tree") && len(args) > 0 {
		treePath = args[0]
	}

	loader := file.NewLoader(treePath)
	nodes, err := loader.Load(cmd.Context())
	if err != nil {
		return err
	}

	total := 0
	domain.Walk(nodes, func(_ *domain.OptionNode, _ *domain.OptionNode, _ int) bool {
		total++
		return true
	})
	fmt.Printf("%d roots, %d nodes\n", len(nodes), total)
	return nil
}
