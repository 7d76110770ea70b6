package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/config"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/database"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/logging"
	"gorm.io/gorm/logger"
)

// Prints the schema the migrations produce. Defaults to an in-memory pure-Go
// SQLite database; -db sqlite uses the cgo driver instead.
func main() {
	dbType := flag.String("db", "sqlite-pure", "sqlite or sqlite-pure")
	flag.Parse()

	cfg := config.Default()
	cfg.DBType = *dbType
	cfg.DBDatabase = ":memory:"
	dialector, err := database.Dialector(&cfg)
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Open(dialector, logging.NewNop(), logger.Silent)
	if err != nil {
		log.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)

	// Migrate to see what GORM and the dialect DDL create
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	var tables []string
	if err := db.Raw("SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name").Scan(&tables).Error; err != nil {
		log.Fatal(err)
	}

	for _, table := range tables {
		fmt.Printf("\n=== Table: %s ===\n", table)
		var statements []string
		db.Raw("SELECT sql FROM sqlite_master WHERE tbl_name = ? AND sql IS NOT NULL ORDER BY type DESC, name", table).
			Scan(&statements)
		for _, stmt := range statements {
			fmt.Println(stmt + ";")
		}
	}
}
