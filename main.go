package main

import "twcli/cmd"

func main() {
	cmd.Execute()
}
