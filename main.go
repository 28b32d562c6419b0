package main

import "github.com/ValentinKolb/erlmap/cmd"

func main() {
	cmd.Execute()
}
