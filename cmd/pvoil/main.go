package main

import (
	"context"

	"github.com/mamadbah2/pvoil/cmd/pvoil/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
