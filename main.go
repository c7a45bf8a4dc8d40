package main

import "github.com/KaramelBytes/fluidreport/cmd"

func main() {
	cmd.Execute()
}
