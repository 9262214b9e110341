package main

import "github.com/silversurf/auditor/internal/cli"

func main() {
	cli.Execute()
}
