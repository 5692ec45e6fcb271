// Command chatbot is a terminal chatbot with local intents and a remote
// advice fallback.
package main

import "github.com/diogo/chatbot/internal/commands"

func main() {
	commands.Execute()
}
