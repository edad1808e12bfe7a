package main

import "github.com/chelma/cloud-demo/cmd"

func main() {
	cmd.Execute()
}
