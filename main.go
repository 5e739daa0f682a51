// Package main is the entry point for the bstats CLI tool, which parses
// battle replay exports and computes per-combatant and per-player statistics.
package main

import "github.com/pable/go-battle-stats/cmd"

func main() {
	cmd.Execute()
}
