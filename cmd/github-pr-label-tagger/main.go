package main

import "github.com/fabien-marty/github-pr-label-tagger/internal/infra/controllers/cli"

func main() {
	cli.Main()
}
