package main

import "github.com/timvw/panefit/cmd"

func main() {
	cmd.Execute()
}
