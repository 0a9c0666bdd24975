package main

import "github.com/kevmo314/go-vrcapture/cmd/vrcapture/commands"

func main() {
	commands.Execute()
}
