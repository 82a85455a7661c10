package main

import (
	"os"

	"github.com/jrabinow/kpsync/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
