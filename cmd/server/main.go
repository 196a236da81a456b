package main

import "github.com/maka4h/user-service/cmd/server/cmd"

func main() {
	cmd.Execute()
}
