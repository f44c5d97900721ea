package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/math-defender/internal/game"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List operation filters and difficulty tiers",
	Long:  `Shows every filter and tier, and the category keys high scores are kept under.`,
	Args:  cobra.NoArgs,
	Run:   runCategories,
}

func runCategories(_ *cobra.Command, _ []string) {
	filters := game.Filters()
	tiers := game.Tiers()

	fmt.Println("Operation filters:")
	fmt.Println()
	fmt.Printf("  %-4s  %s\n", "Key", "Filter")
	fmt.Printf("  %-4s  %s\n", "---", "------")
	for _, f := range filters {
		fmt.Printf("  %-4s  %s\n", f, f.Label())
	}

	fmt.Println()
	fmt.Println("Difficulty tiers:")
	fmt.Println()
	fmt.Printf("  %-8s  %s\n", "Key", "Tier")
	fmt.Printf("  %-8s  %s\n", "---", "----")
	for _, t := range tiers {
		fmt.Printf("  %-8s  %s\n", t, t.Label())
	}

	fmt.Println()
	fmt.Printf("%d categories, each with its own high score:\n", len(game.Categories()))
	for _, f := range filters {
		fmt.Print(" ")
		for _, t := range tiers {
			fmt.Printf(" %-10s", game.Category{Filter: f, Tier: t})
		}
		fmt.Println()
	}

	fmt.Println()
	fmt.Println("Run 'defender play --filter <key> --tier <tier>' to start in a category.")
}
