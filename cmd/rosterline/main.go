package main

import "rosterline/internal/cli"

func main() {
	cli.Execute()
}
