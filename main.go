package main

import (
	"os"

	"github.com/kezlya/solr2es/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
