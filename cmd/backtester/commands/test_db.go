package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/backtester/internal/storage"
	"github.com/wonny/backtester/pkg/config"
	"github.com/wonny/backtester/pkg/database"
	"github.com/wonny/backtester/pkg/logger"
)

// testDBCmd represents the test-db command
var testDBCmd = &cobra.Command{
	Use:   "test-db",
	Short: "Test the configured store connection",
	Long: `Connects to the store named by STORE_DRIVER and reports its health.
For PostgreSQL the connection pool statistics are shown as well.

Example:
  go run ./cmd/backtester test-db
  go run ./cmd/backtester test-db --env production`,
	RunE: runTestDB,
}

func init() {
	rootCmd.AddCommand(testDBCmd)
}

func runTestDB(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Backtester Store Connection Test ===")

	// Load configuration
	fmt.Println("Loading configuration...")
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	fmt.Printf("✅ Config loaded (ENV: %s, STORE_DRIVER: %s)\n\n", cfg.Env, cfg.StoreDriver)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.StoreDriver == config.DriverPostgres {
		return testPostgres(ctx, cfg)
	}

	cfg.Database.AutoMigrate = false
	stores, err := storage.Open(ctx, cfg, logger.Nop())
	if err != nil {
		return fmt.Errorf("❌ Failed to open store: %w", err)
	}
	defer stores.Close()

	if err := stores.Ping(ctx); err != nil {
		return fmt.Errorf("❌ Failed to ping store: %w", err)
	}
	fmt.Println("✅ Ping successful")
	if cfg.StoreDriver == config.DriverSQLite {
		fmt.Printf("   Path: %s\n", cfg.SQLitePath)
	}

	fmt.Println("\n✅ All tests passed!")
	return nil
}

func testPostgres(ctx context.Context, cfg *config.Config) error {
	fmt.Printf("   Database URL: %s\n\n", maskPassword(cfg.Database.URL))

	fmt.Println("Connecting to database...")
	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()
	fmt.Println("✅ Database connection established")

	fmt.Println("Getting health status...")
	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}

	fmt.Println("✅ Health Check Results:")
	fmt.Printf("   Healthy: %v\n", status.Healthy)
	fmt.Printf("   Response Time: %v\n", status.ResponseTime)
	fmt.Printf("   Timestamp: %v\n\n", status.Timestamp.Format(time.RFC3339))

	fmt.Println("📊 Connection Pool Statistics:")
	fmt.Printf("   Max Connections: %d\n", status.Stats.MaxConns)
	fmt.Printf("   Total Connections: %d\n", status.Stats.TotalConns)
	fmt.Printf("   Acquired Connections: %d\n", status.Stats.AcquiredConns)
	fmt.Printf("   Idle Connections: %d\n", status.Stats.IdleConns)
	fmt.Printf("   Acquire Count: %d\n", status.Stats.AcquireCount)
	fmt.Printf("   Acquire Duration: %v\n", status.Stats.AcquireDuration)

	fmt.Println("\n✅ All tests passed!")
	return nil
}

// maskPassword hides the password in a database URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
