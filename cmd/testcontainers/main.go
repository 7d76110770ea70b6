package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/testsupport"
	"github.com/testcontainers/testcontainers-go"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var withRedis bool
	flag.BoolVar(&withRedis, "redis", true, "also start a redis container for the deletion queue")
	flag.Parse()

	usage := `
Run a development database (and redis) in containers for the split sheet service.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-redis=false]

ENV_FILE_PATH: path to the .env file; DB_TYPE selects postgres, mysql or mariadb

The connection settings are printed in .env format once the containers are ready.

example
  testcontainers -f /path/to/something/.env
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "postgres"
	}

	ctx := context.Background()
	var containers []testcontainers.Container
	terminate := func() {
		for _, c := range containers {
			if err := c.Terminate(context.Background()); err != nil {
				log.Printf("Failed to terminate container: %v\n", err)
			}
		}
	}

	db, err := testsupport.RunDatabase(ctx, dbType)
	if err != nil {
		log.Fatalf("Failed to create database container: %v\n", err)
	}
	containers = append(containers, db.Container)

	env := map[string]string{
		"DB_TYPE":     db.Config.DBType,
		"DB_HOST":     db.Config.DBHost,
		"DB_PORT":     db.Config.DBPort,
		"DB_DATABASE": db.Config.DBDatabase,
		"DB_USER":     db.Config.DBUser,
		"DB_PASSWORD": db.Config.DBPassword,
	}

	if withRedis {
		redisContainer, url, err := testsupport.RunRedis(ctx)
		if err != nil {
			terminate()
			log.Fatalf("Failed to create redis container: %v\n", err)
		}
		containers = append(containers, redisContainer)
		env["REDIS_URL"] = url
	}

	out, err := godotenv.Marshal(env)
	if err != nil {
		terminate()
		log.Fatalf("Failed to render environment: %v\n", err)
	}
	fmt.Println(out)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating test containers...\n", sig)
	terminate()
}
