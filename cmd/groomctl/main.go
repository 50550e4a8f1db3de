package main

import "github.com/wolfman30/cuddles-booking/internal/cli"

func main() {
	cli.Execute()
}
