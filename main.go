package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"jackpot/cmd"
	"jackpot/database"
	"jackpot/service"
)

func main() {
	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error:", err)
		}
		return
	}

	// Offline draw simulation
	if len(os.Args) > 1 && os.Args[1] == "simulate" {
		if err := handleSimulateCommand(); err != nil {
			log.Fatal("Simulation error:", err)
		}
		return
	}

	if len(os.Args) > 1 && os.Args[1] != "serve" {
		log.Fatalf("unknown command %q; usage: jackpot [serve|migrate|simulate]", os.Args[1])
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error:", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: jackpot migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

func handleSimulateCommand() error {
	trials, poolSeed, wager := 100000, int64(1000), int64(10)

	var err error
	if len(os.Args) > 2 {
		if trials, err = strconv.Atoi(os.Args[2]); err != nil || trials <= 0 {
			return fmt.Errorf("invalid trials value %q", os.Args[2])
		}
	}
	if len(os.Args) > 3 {
		if wager, err = strconv.ParseInt(os.Args[3], 10, 64); err != nil || wager <= 0 {
			return fmt.Errorf("invalid wager value %q", os.Args[3])
		}
	}
	if len(os.Args) > 4 {
		if poolSeed, err = strconv.ParseInt(os.Args[4], 10, 64); err != nil || poolSeed < 0 {
			return fmt.Errorf("invalid pool seed value %q", os.Args[4])
		}
	}

	report := cmd.Simulate(service.NewRandomSource(), trials, poolSeed, wager)
	report.Write(os.Stdout)
	return nil
}
