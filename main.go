package main

import "github.com/caffeinepub/xoroots-football-coaching-platform/cmd"

func main() {
	cmd.Run()
}
