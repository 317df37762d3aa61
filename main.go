package main

import "vidtrack/cmd"

// @title vidtrack API
// @version 1.0
// @description Video person-tracking job API
// @BasePath /
func main() {
	cmd.Execute()
}
