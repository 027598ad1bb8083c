package main

import "webresource-sync/cmd"

func main() {
	cmd.Execute()
}
