/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/docdrop-io/apiserver/cmd"

func main() {
	cmd.Execute()
}
