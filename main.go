package main

import (
	"messenger/chat-service/cmd"
)

func main() {
	cmd.Execute()
}
