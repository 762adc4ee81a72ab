package main

import (
	"github.com/docfuse/docfuse/cmd/docfuse/cmd"
)

func main() {
	cmd.Execute()
}
