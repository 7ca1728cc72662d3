package main

import "github.com/funvibe/liger/pkg/cli"

func main() {
	cli.Run()
}
