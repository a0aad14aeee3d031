package main

import "github.com/gaurav-prasanna/receita/cmd"

func main() {
	cmd.Execute()
}
