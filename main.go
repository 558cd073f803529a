package main

import "github.com/rotblauer/gpxnap/cmd"

func main() {
	cmd.Execute()
}
