package main

import (
	"strings"
	"testing"
)

func TestRunSchedulerRejectsBadSchedule(t *testing.T) {
	config := &Config{Schedule: "not a cron expression"}

	err := runScheduler(config, func(*Config) {})
	if err == nil {
		t.Fatal("runScheduler() should reject an invalid schedule")
	}
	if !strings.Contains(err.Error(), "not a cron expression") {
		t.Errorf("error %q should quote the bad schedule", err.Error())
	}
}
