package main

import "github.com/panda73111/mod0keecrack/cmd"

func main() {
	cmd.Execute()
}
