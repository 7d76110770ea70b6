// main.go
//
// Royalty split sheets, notifications and account deletion for songwriters
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of split-sheet-webapp.
// split-sheet-webapp is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// split-sheet-webapp is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with split-sheet-webapp.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/config"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/database"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/jobqueue"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/logging"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	// Connect to database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// A provider that fails to initialize is reported through the ping below
	var provider services.IdentityProvider
	if p, err := services.NewAuthorizerProvider(cfg, logger); err == nil {
		provider = p
	} else {
		provider = unreachable{err: err}
	}

	var queue services.Pinger
	if cfg.RedisURL != "" {
		q, err := jobqueue.NewRedisQueue(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to open redis queue: %v", err)
		}
		defer q.Close()
		queue = q
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Perform health check
	result := services.HealthCheck(ctx, cfg, db, provider, queue, logger)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status != "healthy" {
		os.Exit(1)
	}
	os.Exit(0)
}

// unreachable stands in for a provider whose startup ping failed
type unreachable struct {
	services.IdentityProvider
	err error
}

func (u unreachable) Ping(ctx context.Context) error {
	return u.err
}
