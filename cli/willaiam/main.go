package main

import (
	"os"

	willaiamcmder "github.com/Birmingham-AI/willAIam/cmd/willaiam"
)

func main() {
	cmd := willaiamcmder.NewWillaiamCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
