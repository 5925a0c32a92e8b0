package main

import "github.com/mcoot/treasurehunt-go/internal/cli"

func main() {
	cli.Execute()
}
