package main

import (
	"fmt"
	"os"

	"grocerytracker/cmd/grocery/entries"
	"grocerytracker/cmd/grocery/root"
	"grocerytracker/cmd/grocery/users"
	"grocerytracker/cmd/grocery/weather"
)

func main() {
	rootCmd := root.GetRoot()
	users.InitUsers(rootCmd)
	entries.InitEntries(rootCmd)
	weather.InitWeather(rootCmd)

	// Execute the root Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
