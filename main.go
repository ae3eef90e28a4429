package main

import "github.com/DanielClxpz/MSR-CLI-Tool/cmd"

func main() {
	cmd.Execute()
}
