package main

import "github.com/dmitrijs2005/dsbrowser/internal/cli"

func main() {
	cli.Execute()
}
