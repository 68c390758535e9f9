package models

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB is the database used by the backend.
var DB *gorm.DB

type FDContext string

const (
	DBContextURL FDContext = "fleetdeck-backend-url"
)

// ConnectDatabase connects to the configured database.
//
// If DB_HOST is set, postgresql is used, otherwise a local
// sqlite database.
func ConnectDatabase() error {
	_, ok := os.LookupEnv("DB_HOST")
	if ok {
		log.Debug().Msg("DB_HOST is set, using postgresql")
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s", os.Getenv("DB_HOST"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"))

		db, err := gorm.Open(postgres.Open(dsn), config())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		return setup(db)
	}

	log.Debug().Msg("DB_HOST is not set, using sqlite database")
	dataDir := "data"
	err := os.MkdirAll(dataDir, os.ModePerm)
	if err != nil {
		return fmt.Errorf("could not create data directory: %w", err)
	}

	return Connect("data/gorm.db")
}

// Connect opens a SQLite database and configures the connection pool.
func Connect(dsn string) error {
	dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)", dsn)
	db, err := gorm.Open(sqlite.Open(dsn), config())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// This is done to prevent SQLITE_BUSY errors.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	return setup(db)
}

func config() *gorm.Config {
	return &gorm.Config{
		// Set generated timestamps in UTC
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
		Logger: &logger{
			Logger: log.Logger,
		},
	}
}

// setup migrates the schema, registers the error translation callbacks and
// sets the exported DB variable.
func setup(db *gorm.DB) error {
	err := migrate(db)
	if err != nil {
		return err
	}

	// Query callbacks
	err = db.Callback().Query().After("*").Register("fleetdeck:after_query", queryCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Query().After("*").Register("fleetdeck:after_query_general", generalCallback)
	if err != nil {
		return err
	}

	// Create callbacks
	err = db.Callback().Create().After("*").Register("fleetdeck:after_create", createUpdateCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Create().After("*").Register("fleetdeck:after_create_general", generalCallback)
	if err != nil {
		return err
	}

	// Update callbacks
	err = db.Callback().Update().After("*").Register("fleetdeck:after_update", createUpdateCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Update().After("*").Register("fleetdeck:after_update_general", generalCallback)
	if err != nil {
		return err
	}

	// Delete callbacks
	err = db.Callback().Delete().After("*").Register("fleetdeck:after_delete_general", generalCallback)
	if err != nil {
		return err
	}

	DB = db
	return nil
}

// queryCallback replaces the generic "no record" error with a more user
// friendly one
func queryCallback(db *gorm.DB) {
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		// Use the table name as information about the type of resource
		// and replace "_" with "[space]"
		name := strings.ReplaceAll(db.Statement.Table, "_", " ")

		// Replace pluralized "ies" with "y"
		match := regexp.MustCompile("ies$")
		name = match.ReplaceAllString(name, "y")

		// Remove plural "s"
		name = strings.TrimRight(name, "s")

		db.Error = fmt.Errorf("%w %s matching your query", ErrResourceNotFound, name)
	}
}

// createUpdateCallback inspects errors returned by the database for create
// and update calls and replaces them with user friendly ones
func createUpdateCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	for constraint, friendly := range constraintErrors {
		if strings.Contains(db.Error.Error(), constraint) {
			db.Error = friendly
			return
		}
	}
}

// constraintErrors maps unique constraint violations to user friendly
// errors.
//
// The series_id, due_date entry is what makes the recurring series
// continuation idempotent: two concurrent passes that both try to append
// the same month lose the race at the database instead of creating a
// duplicate series member.
var constraintErrors = map[string]error{
	"financial_records.series_id, financial_records.due_date": ErrSeriesMemberExists,
	"organizations.name":                              ErrOrganizationNameNotUnique,
	"vehicles.organization_id, vehicles.plate":        ErrVehiclePlateNotUnique,
	"drivers.organization_id, drivers.license_number": ErrDriverLicenseNotUnique,
	"categories.organization_id, categories.name":     ErrCategoryNameNotUnique,
	"subcategories.category_id, subcategories.name":   ErrSubcategoryNameNotUnique,
	"custom_roles.organization_id, custom_roles.name": ErrCustomRoleNameNotUnique,
}

// generalCallback handles unspecified errors.
//
// For these errors, we cannot provide the user with a helpful message.
// Instead, the error is logged and we return a general message to users.
func generalCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	// "sql: database is closed" is hard-coded in the sql module, see
	// https://cs.opensource.google/go/go/+/master:src/database/sql/sql.go;l=1298;drc=0d018b49e33b1383dc0ae5cc968e800dffeeaf7d
	if db.Error.Error() == "sql: database is closed" || reflect.TypeOf(db.Error) == reflect.TypeOf(&go_sqlite.Error{}) {
		// A general error where we cannot provide more useful information to the end user
		// We log the error and provide a general error message so that server admins can debug
		log.Error().Msgf("%T: %v", db.Error, db.Error.Error())
		db.Error = ErrGeneral

		return
	}
}

// migrate migrates all models to the schema defined in the code.
func migrate(db *gorm.DB) (err error) {
	err = db.AutoMigrate(
		Organization{},
		CustomRole{},
		Vehicle{},
		Driver{},
		Trip{},
		MaintenanceRecord{},
		Category{},
		Subcategory{},
		CategoryRule{},
		FinancialRecord{},
	)
	if err != nil {
		return fmt.Errorf("error during DB migration: %w", err)
	}

	return nil
}
