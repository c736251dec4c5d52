package main

import "github.com/rkeeler/archery-sync/internal/cli"

func main() {
	cli.Execute()
}
