package main

import "enquirysync/cmd"

func main() {
	cmd.Execute()
}
