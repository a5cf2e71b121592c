/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/sayounara/foster-btree/cmd/foster/cmd"

func main() {
	cmd.Execute()
}
