package main

import "github.com/SAP-F-2025/skill-tracker/cmd"

func main() {
	cmd.Execute()
}
