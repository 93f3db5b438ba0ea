package main

import "wpsearch/internal/cli"

func main() {
	cli.Execute()
}
