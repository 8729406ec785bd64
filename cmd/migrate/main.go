// Command migrate applies or rolls back schema migrations for either
// service's database. Extends a golang-migrate CLI wrapper with a
// -service flag since this platform owns two independent schemas
// (migrations/wallet, migrations/history) rather than one.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var (
		service        string
		migrationsPath string
		databaseURL    string
		command        string
		steps          int
	)

	flag.StringVar(&service, "service", "wallet", "Which service's schema to migrate: wallet or history")
	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations/<service>)")
	flag.StringVar(&databaseURL, "database-url", "", "Database connection URL")
	flag.StringVar(&command, "command", "up", "Migration command: up, down, force, version, drop")
	flag.IntVar(&steps, "steps", 0, "Number of steps for up/down (0 = all)")
	flag.Parse()

	if service != "wallet" && service != "history" {
		log.Fatalf("unknown service %q: must be wallet or history", service)
	}

	if migrationsPath == "" {
		migrationsPath = "./migrations/" + service
	}

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		prefix := "WALLET"
		defaultName := "wallet"
		if service == "history" {
			prefix, defaultName = "HISTORY", "history"
		}

		host := getEnvOrDefault(prefix+"_DATABASE_HOST", "localhost")
		port := getEnvOrDefault(prefix+"_DATABASE_PORT", "5432")
		user := getEnvOrDefault(prefix+"_DATABASE_USER", "postgres")
		password := getEnvOrDefault(prefix+"_DATABASE_PASSWORD", "postgres")
		dbname := getEnvOrDefault(prefix+"_DATABASE_DATABASE", defaultName)
		sslmode := getEnvOrDefault(prefix+"_DATABASE_SSL_MODE", "disable")

		databaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			user, password, host, port, dbname, sslmode)
	}

	args := flag.Args()
	if len(args) > 0 {
		command = args[0]
	}
	if len(args) > 1 {
		var err error
		steps, err = strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("invalid steps argument: %v", err)
		}
	}

	sourceURL := "file://" + migrationsPath

	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		log.Fatalf("failed to create migrate instance: %v", err)
	}
	defer m.Close()

	m.Log = &migrationLogger{}

	switch command {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("migration up failed: %v", err)
		}
		fmt.Printf("%s migrations applied successfully\n", service)

	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("migration down failed: %v", err)
		}
		fmt.Printf("%s migrations rolled back successfully\n", service)

	case "force":
		if len(args) < 2 {
			log.Fatal("force requires a version argument")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("invalid version: %v", err)
		}
		if err := m.Force(version); err != nil {
			log.Fatalf("force failed: %v", err)
		}
		fmt.Printf("forced %s version to %d\n", service, version)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Println("no migrations applied yet")
			} else {
				log.Fatalf("failed to get version: %v", err)
			}
		} else {
			fmt.Printf("current %s version: %d (dirty: %v)\n", service, version, dirty)
		}

	case "drop":
		if err := m.Drop(); err != nil {
			log.Fatalf("drop failed: %v", err)
		}
		fmt.Printf("all %s tables dropped successfully\n", service)

	default:
		log.Fatalf("unknown command: %s\nAvailable commands: up, down, force, version, drop", command)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// migrationLogger implements migrate.Logger.
type migrationLogger struct{}

func (l *migrationLogger) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

func (l *migrationLogger) Verbose() bool {
	return true
}
