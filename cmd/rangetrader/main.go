package main

import "github.com/rustyeddy/rangetrader/internal/cli"

func main() {
	cli.Execute()
}
