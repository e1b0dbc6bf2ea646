package main

import (
	"github.com/shoplabs/shopcore/internal/app"
	"github.com/shoplabs/shopcore/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewCartApp().Run()
}
