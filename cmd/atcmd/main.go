/*
Copyright © 2025 All Binary AB
*/
package main

import "github.com/allbin/atcmd/cmd"

func main() {
	cmd.Execute()
}
