package main

import (
	"github.com/sorogrupos/jobcast/cmd"
)

func main() {
	cmd.Execute()
}
