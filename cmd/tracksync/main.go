// Command tracksync reconciles a track's stored exercises with its content
// repository. See `tracksync --help`.
package main

import (
	"os"

	"github.com/roach88/tracksync/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
