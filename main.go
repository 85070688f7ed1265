/*
Copyright 2024 Markus Papenbrock
*/
package main

import "github.com/mpapenbr/accbroadcast-go/cmd"

func main() {
	cmd.Execute()
}
