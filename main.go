package main

import "github.com/KaramelBytes/statdeck/cmd"

func main() {
	cmd.Execute()
}
