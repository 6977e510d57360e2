package main

import (
	"fmt"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/fieldserve/inspector-api/api/handlers"
	"github.com/fieldserve/inspector-api/api/scheduler"
	"github.com/fieldserve/inspector-api/compliance"
	"github.com/fieldserve/inspector-api/config"
	"github.com/fieldserve/inspector-api/databases"
	"github.com/fieldserve/inspector-api/lifecycle"
)

func main() {
	conf := config.New()

	client, err := databases.NewClient(conf)
	if err != nil {
		log.Fatalf("failed to create mongo client: %v", err)
	}
	if err := client.Connect(); err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	db := databases.NewDatabase(conf, client)

	app := handlers.NewApp(conf, db)
	router := app.New()

	sweeper := scheduler.NewScheduler(
		databases.NewInspectorDatabase(db),
		compliance.NewTracker(databases.NewDrugTestDatabase(db)),
		databases.NewSchedulerLockDatabase(db),
		lifecycle.NewSendgridNotifier(conf.SendgridAPIKey, "", conf.NotifyFromEmail),
	)
	sweeper.Start()
	defer sweeper.Stop()

	zap.S().Infow("inspector-api is up and running",
		"port", conf.Port,
		"url", conf.BaseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", conf.Port), router))
}
