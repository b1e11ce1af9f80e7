package main

import (
	"github.com/animelog/tracker/config"
	"github.com/animelog/tracker/models"
	"github.com/animelog/tracker/routes"
	"github.com/animelog/tracker/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.TaskDefinition{},
		&models.DailyTaskCompletion{},
		&models.UserTracker{},
		&models.ActivityLog{},
	)
	if err := config.SeedTaskDefinitions(db); err != nil {
		utils.Sugar.Fatalf("task definition seeding failed: %v", err)
	}

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting tracker service on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
