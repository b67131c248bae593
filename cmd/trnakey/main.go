// trnakey - tRNA modification compatibility tool
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/trnakey/cmd/trnakey/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
