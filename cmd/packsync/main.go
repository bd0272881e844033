// Command packsync generates OpenCode configuration from Claude plugin packs.
package main

import (
	"os"

	"github.com/ccconfigs/packsync/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
