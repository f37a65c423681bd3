package main

import (
	"os"

	"github.com/grandcafe/floorplan/cmd"
	"github.com/grandcafe/floorplan/config"
	"github.com/grandcafe/floorplan/utils"
)

func main() {
	utils.InitLogger()
	cfg := config.Load()

	if err := cmd.RootCommand(cfg).Execute(); err != nil {
		utils.ErrorLogger.Error(err)
		os.Exit(1)
	}
}
