package main

import (
	cli "github.com/nullmapper/distcrawler/internal/cli"
)

func main() {
	cli.Execute()
}
