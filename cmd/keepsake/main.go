/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/keepsake/cmd/keepsake/cmd"

func main() {
	cmd.Execute()
}
