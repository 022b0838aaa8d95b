package main

import "github.com/gaurav-prasanna/adocpipe/cmd"

func main() {
	cmd.Execute()
}
