package main

import (
	"context"
	"log"

	"jobportal-be/internal/bootstrap"
	"jobportal-be/internal/config"
	"jobportal-be/internal/server"
	"jobportal-be/internal/tracer"
	"jobportal-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Session Projection Service...")
		if err := container.SessionService.Consume(context.Background()); err != nil {
			log.Printf("Background Session Service Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
