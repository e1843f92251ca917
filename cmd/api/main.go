package main

import (
	"go.uber.org/fx"

	"github.com/routedash/routedash/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
