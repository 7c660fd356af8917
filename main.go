package main

import "github.com/notifd/notifd/cmd"

func main() {
	cmd.Execute()
}
