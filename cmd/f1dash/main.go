package main

import "github.com/LewisSchmidtke/Formula1-DataEngineering/internal/cmd"

func main() {
	cmd.Execute()
}
