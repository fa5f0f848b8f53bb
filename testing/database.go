// Package testing provides test utilities and database setup for repository integration tests
package testing

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dialerTables lists every table the migrations create, children first
var dialerTables = []string{"call_log_entries", "contacts"}

// TestDBConfig holds configuration for test database connections
type TestDBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	SSLMode  string
}

func (c *TestDBConfig) dsn(dbName string) string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s sslmode=%s", c.Host, c.Port, c.User, c.Password, c.SSLMode)
	if dbName != "" {
		dsn += " dbname=" + dbName
	}
	return dsn
}

func loadTestDBConfig() *TestDBConfig {
	port, err := strconv.Atoi(os.Getenv("TEST_DB_PORT"))
	if err != nil {
		port = 5432
	}
	return &TestDBConfig{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     port,
		User:     envOr("TEST_DB_USER", "postgres"),
		Password: envOr("TEST_DB_PASSWORD", "postgres"),
		SSLMode:  envOr("TEST_DB_SSL_MODE", "disable"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// IntegrationEnabled reports whether a PostgreSQL server was configured for tests
func IntegrationEnabled() bool {
	return os.Getenv("TEST_DB_HOST") != ""
}

// TestDB is a throwaway database holding the dialer schema
type TestDB struct {
	DB     *gorm.DB
	Name   string
	config *TestDBConfig
}

func openSilent(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}

// withAdmin runs fn on a connection to the server's default database
func withAdmin(config *TestDBConfig, fn func(*gorm.DB) error) error {
	admin, err := openSilent(config.dsn(""))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer func() {
		if sqlDB, err := admin.DB(); err == nil {
			sqlDB.Close()
		}
	}()
	return fn(admin)
}

// SetupTestDB creates a uniquely named database and applies the SQL migrations
func SetupTestDB() (*TestDB, error) {
	config := loadTestDBConfig()
	name := fmt.Sprintf("dialer_test_%d_%d", time.Now().Unix(), rand.Intn(10000))

	if err := withAdmin(config, func(admin *gorm.DB) error {
		return admin.Exec("CREATE DATABASE " + name).Error
	}); err != nil {
		return nil, fmt.Errorf("failed to create test database %s: %w", name, err)
	}

	tdb := &TestDB{Name: name, config: config}
	db, err := openSilent(config.dsn(name))
	if err != nil {
		tdb.drop()
		return nil, fmt.Errorf("failed to connect to test database %s: %w", name, err)
	}
	tdb.DB = db

	if err := applyMigrations(config.dsn(name)); err != nil {
		tdb.TeardownTestDB()
		return nil, fmt.Errorf("failed to migrate test database %s: %w", name, err)
	}
	return tdb, nil
}

// TeardownTestDB closes the connection and drops the database
func (tdb *TestDB) TeardownTestDB() error {
	if tdb.DB != nil {
		if sqlDB, err := tdb.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return tdb.drop()
}

func (tdb *TestDB) drop() error {
	return withAdmin(tdb.config, func(admin *gorm.DB) error {
		if err := admin.Exec(
			"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = ? AND pid <> pg_backend_pid()",
			tdb.Name,
		).Error; err != nil {
			log.Printf("Warning: failed to terminate connections to %s: %v", tdb.Name, err)
		}
		return admin.Exec("DROP DATABASE IF EXISTS " + tdb.Name).Error
	})
}

// ClearAllTables truncates the dialer tables
func (tdb *TestDB) ClearAllTables() error {
	for _, table := range dialerTables {
		if err := tdb.DB.Exec("TRUNCATE TABLE " + table).Error; err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return nil
}

// applyMigrations executes migrations/*.sql in file name order
func applyMigrations(dsn string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	dir := findMigrationsDir(wd)
	if dir == "" {
		return fmt.Errorf("migrations directory not found above %s", wd)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(file), err)
		}
	}
	return nil
}

// findMigrationsDir walks up from dir; package tests run from their own directory
func findMigrationsDir(dir string) string {
	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// TestWithDB sets up a database, runs testFunc and drops the database
func TestWithDB(testFunc func(*TestDB) error) error {
	testDB, err := SetupTestDB()
	if err != nil {
		return fmt.Errorf("failed to setup test database: %w", err)
	}
	defer func() {
		if err := testDB.TeardownTestDB(); err != nil {
			log.Printf("Warning: failed to cleanup test database: %v", err)
		}
	}()
	return testFunc(testDB)
}

// CreateTestContext creates a context for testing
func CreateTestContext() context.Context {
	return context.Background()
}
