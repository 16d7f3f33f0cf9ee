package main

import "medrag/cmd"

func main() {
	cmd.Execute()
}
