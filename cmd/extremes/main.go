package main

import "sensor-extremes/internal/cli"

func main() {
	cli.Execute()
}
