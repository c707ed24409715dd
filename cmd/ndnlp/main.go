package main

import (
	"os"

	"github.com/named-data/ndnlp/cmd"
)

func main() {
	if err := cmd.CmdNdnlp.Execute(); err != nil {
		os.Exit(1)
	}
}
