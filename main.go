package main

import "refdata-manager/cmd"

func main() {
	cmd.Execute()
}
