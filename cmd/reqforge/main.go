package main

import "github.com/reqforge/reqforge/internal/cli"

func main() {
	cli.Execute()
}
