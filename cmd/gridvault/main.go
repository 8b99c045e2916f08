package main

import (
	"github.com/benchwise/gridvault/cmd/gridvault/cmd"
)

func main() {
	cmd.Execute()
}
