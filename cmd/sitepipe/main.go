package main

import "github.com/sitepipe/sitepipe/internal/cli"

func main() {
	cli.Execute()
}
