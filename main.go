package main

import (
	"github.com/biosecret/go-tasks/app"
	_ "github.com/biosecret/go-tasks/docs"
)

// @title Task API
// @version 1.0
// @description Personal task manager: user accounts and per-user tasks.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// setup and run app
	err := app.SetupAndRunApp()
	if err != nil {
		panic(err)
	}
}
