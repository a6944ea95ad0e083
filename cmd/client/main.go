package main

import (
	"mebe/internal/config" // Custom package for configuration
	"mebe/internal/store"  // Record store implementations
	"mebe/internal/tui"    // Terminal client

	tea "github.com/charmbracelet/bubbletea" // Bubbletea TUI framework
	"github.com/sirupsen/logrus"             // Logrus for structured logging
	"gorm.io/driver/mysql"                   // MySQL driver for GORM
	"gorm.io/gorm"                           // GORM ORM library
)

// Main function to set up and run the terminal client. The client talks to
// the same record store as the server, so the backend switch is identical.
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Pick the record store backend: local JSON files or the remote table store
	var st store.Store
	switch cfg.StoreBackend {
	case config.BackendMySQL:
		// Setup Data Source Name (DSN) and connect to the database
		dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
		if err != nil {
			logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
		}
		st = store.NewSQL(db)
	case config.BackendLocal:
		local, err := store.NewLocal(cfg.DataDir)
		if err != nil {
			logrus.Fatalf("failed to open local store: %v", err)
		}
		st = local
	default:
		logrus.Fatalf("unknown store backend: %s", cfg.StoreBackend)
	}

	// Run the client full-screen
	if _, err := tea.NewProgram(tui.New(cfg, st), tea.WithAltScreen()).Run(); err != nil {
		logrus.Fatalf("client exited: %v", err)
	}
}
