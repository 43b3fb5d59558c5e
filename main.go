package main

import "github.com/masmgr/gitsqlite/cmd"

func main() {
	cmd.Run()
}
