package main

import "github.com/example/psychly/cmd"

func main() {
	cmd.Execute()
}
