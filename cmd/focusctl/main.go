// Command focusctl is the CLI and daemon entry point for the adaptive
// focus-duration recommender.
package main

import "github.com/tutu-network/focusband/internal/cli"

func main() {
	cli.Execute()
}
