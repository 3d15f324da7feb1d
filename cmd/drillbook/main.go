// Package main provides the drillbook CLI tool for analyzing chess games,
// reviewing mined puzzles, and tracking accuracy trends.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
