/*
Package canopy is a headless, hierarchical selection engine (a "tree select") for
presenting a nested set of labeled options and letting a user pick one or many,
including whole subtrees at once.

It implements a "Delta-Merging Selection Controller" architecture, separating the
option hierarchy (Tree) from the canonical selection value (Selection) and the
change protocol (Delta). The engine computes what a user action means; your
application ("Host") owns rendering, focus and DOM/terminal lifecycle. This
Hexagonal Architecture allows Canopy to be embedded in any interface: CLI, HTTP
server, or agent infrastructure.

# Key Features

  - Deterministic Deltas: A click anywhere in an arbitrarily deep tree yields one
    disjoint add/remove set covering the node and its whole subtree.
  - Consistent Tri-State: Checked and indeterminate status are re-derived from the
    flat canonical value on every pass; ancestor ids are repaired on divergence.
  - Hexagonal Architecture: Core logic is decoupled from adapters (Storage, UI, Transport).
  - Mode Inheritance: Single/multiple behavior resolves per subtree, top-down.

# Usage

Build the engine from an option tree, then either drive it statelessly (remote
hosts) or hand the canonical value to a Controller (local hosts).

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/canopy"
		"github.com/aretw0/canopy/pkg/domain"
	)

	func main() {
		eng, err := canopy.New([]domain.OptionNode{
			{ID: "fruit", Label: "Fruit", Children: []domain.OptionNode{
				{ID: "apple", Label: "Apple"},
				{ID: "banana", Label: "Banana"},
			}},
		})
		if err != nil {
			log.Fatal(err)
		}

		ctl := eng.NewController()
		if _, err := ctl.Activate(context.Background(), "fruit"); err != nil {
			log.Fatal(err)
		}

		log.Println(ctl.SelectedLabel()) // Fruit, Apple, Banana
	}
*/
package canopy
