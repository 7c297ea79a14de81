package main

import "dict-manager/cmd"

func main() {
	cmd.Execute()
}
