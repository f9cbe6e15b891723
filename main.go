package main

import "coop-inventory/cmd"

func main() {
	cmd.Execute()
}
