package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
)

// runScheduler runs backupFn on the configured cron schedule until the
// process receives SIGINT or SIGTERM.
func runScheduler(config *Config, backupFn func(*Config)) error {
	c := cron.New()
	_, err := c.AddFunc(config.Schedule, func() {
		log.Printf("Scheduled backup starting")
		backupFn(config)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", config.Schedule, err)
	}

	c.Start()
	log.Printf("Scheduler started with schedule %q, waiting for next run", config.Schedule)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Printf("Received %s, shutting down scheduler", sig)
	<-c.Stop().Done()
	return nil
}
