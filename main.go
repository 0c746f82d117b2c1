package main

import (
	"github.com/inference-sim/inference-sim/cmd"
)

func main() {
	cmd.Execute()
}
