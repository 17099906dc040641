package main

import (
	"log"
	"os"
	"os/signal"
	"time"

	sweepmon "github.com/sweepmon/go-monitor-sdk"
	"github.com/sweepmon/go-monitor-sdk/api"
)

func main() {
	options := &sweepmon.Options{
		APIBaseURI:         "http://localhost:8300",
		PollingInterval:    5 * time.Second,
		ClientEventHandler: make(chan api.ClientEvent, 32),
	}
	if len(os.Args) > 1 {
		loaded, err := sweepmon.LoadOptionsFromFile(os.Args[1])
		if err != nil {
			log.Fatal(err)
		}
		loaded.ClientEventHandler = options.ClientEventHandler
		options = loaded
	}

	client, err := sweepmon.NewClient(options)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	operationID, err := client.Launch(api.SweepConfig{
		Models:      []string{"claude-3-haiku", "gpt-4o-mini"},
		Concurrency: 4,
		Categories:  []string{"deception", "fairness"},
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("launched sweep %s", operationID)

	monitor, err := client.ObserveOperation(operationID)
	if err != nil {
		log.Fatal(err)
	}
	if err = monitor.BeginObserving(); err != nil {
		log.Fatal(err)
	}

	go func() {
		for notification := range options.ClientEventHandler {
			log.Printf("[%s] %v", notification.EventType, notification.EventData)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			view := monitor.ViewModel()
			log.Printf("%s: %d/%d done (%d failed, %d running, %d pending) status=%s stream=%s",
				operationID,
				view.Snapshot.Completed, view.Snapshot.Total,
				view.Snapshot.Failed, view.Snapshot.Running, view.Snapshot.Pending,
				view.Snapshot.ControlStatus, monitor.Stream().State())
			if view.Settled {
				log.Printf("sweep settled after %d updates", view.Seq)
				for _, unit := range view.Snapshot.Units {
					log.Printf("  %s: %s (%d/%d)", unit.ID, unit.Status,
						unit.ProgressNumerator, unit.ProgressDenominator)
				}
				return
			}
		case <-interrupt:
			log.Printf("cancelling %s", operationID)
			if err := monitor.Cancel(); err != nil {
				log.Printf("cancel failed: %v", err)
			}
			return
		}
	}
}
