package main

import "github.com/prose66/InvestigationWorkbench/internal/cmd"

func main() {
	cmd.Execute()
}
