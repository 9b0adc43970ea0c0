package main

import "wechatkf-golang/refactor/internal/cli"

func main() {
	cli.Execute()
}
