package main

import "github.com/sidneifjr/ignite-timer/cmd"

func main() {
	cmd.Execute()
}
