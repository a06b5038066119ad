package main

import (
	"log"

	"statcalc/internal/config"
	"statcalc/internal/container"
	"statcalc/ui"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	appContainer.InitWithoutDatabase()

	app, err := ui.NewApp(ui.Config{
		Port:          appConfig.Server.UIPort,
		StrictParsing: appConfig.Calc.StrictParsing,
	}, appContainer.Calculator)
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}

	log.Printf("Starting statcalc UI on http://localhost:%s", appConfig.Server.UIPort)
	log.Fatal(app.Start())
}
