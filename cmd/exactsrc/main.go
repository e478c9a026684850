package main

import "github.com/mvp-joe/exactsrc/internal/cli"

func main() {
	cli.Execute()
}
