package main

import "thisisjapan-backend/cmd"

func main() {
	cmd.Run()
}
