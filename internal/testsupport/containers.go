package testsupport

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	containerDatabase = "splitsheet"
	containerUser     = "splitsheet"
	containerPassword = "splitsheet-pass"
)

type containerSpec struct {
	image string
	port  string
	env   map[string]string
	wait  func(port nat.Port) wait.Strategy
}

func specFor(dbType string) (containerSpec, bool) {
	switch dbType {
	case "postgres":
		return containerSpec{
			image: envOr("POSTGRES_IMAGE", "postgres:16-alpine"),
			port:  "5432",
			env: map[string]string{
				"POSTGRES_DB":       containerDatabase,
				"POSTGRES_USER":     containerUser,
				"POSTGRES_PASSWORD": containerPassword,
			},
			wait: func(port nat.Port) wait.Strategy {
				return wait.ForAll(
					wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
					wait.ForListeningPort(port),
				).WithDeadline(60 * time.Second)
			},
		}, true
	case "mariadb", "mysql":
		return containerSpec{
			image: envOr("MARIADB_IMAGE", "mariadb:11"),
			port:  "3306",
			env: map[string]string{
				"MYSQL_ROOT_PASSWORD": containerPassword,
				"MYSQL_DATABASE":      containerDatabase,
				"MYSQL_USER":          containerUser,
				"MYSQL_PASSWORD":      containerPassword,
			},
			wait: func(port nat.Port) wait.Strategy {
				return wait.ForAll(
					wait.ForLog("ready for connections"),
					wait.ForListeningPort(port),
				).WithDeadline(60 * time.Second)
			},
		}, true
	}
	return containerSpec{}, false
}

// DatabaseContainer is a running database container and the config that
// reaches it
type DatabaseContainer struct {
	Container testcontainers.Container
	Config    config.Config
}

// RunDatabase starts a database container for dbType ("postgres", "mysql" or
// "mariadb"). The caller terminates it.
func RunDatabase(ctx context.Context, dbType string) (*DatabaseContainer, error) {
	spec, ok := specFor(dbType)
	if !ok {
		return nil, fmt.Errorf("no container spec for database type %q", dbType)
	}

	port, err := nat.NewPort("tcp", spec.port)
	if err != nil {
		return nil, fmt.Errorf("create DB port: %w", err)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        spec.image,
			ExposedPorts: []string{string(port)},
			Env:          spec.env,
			WaitingFor:   spec.wait(port),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("start %s container: %w", dbType, err)
	}

	host, mapped, err := endpoint(ctx, container, port)
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, err
	}

	cfg := config.Default()
	cfg.DBType = dbType
	cfg.DBHost = host
	cfg.DBPort = mapped
	cfg.DBDatabase = containerDatabase
	cfg.DBUser = containerUser
	cfg.DBPassword = containerPassword
	cfg.DBConnectionLimit = 5
	cfg.DBLogLevel = "silent"
	return &DatabaseContainer{Container: container, Config: cfg}, nil
}

// RunRedis starts a Redis container and returns it with its redis:// URL
func RunRedis(ctx context.Context) (testcontainers.Container, string, error) {
	port, err := nat.NewPort("tcp", "6379")
	if err != nil {
		return nil, "", fmt.Errorf("create redis port: %w", err)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        envOr("REDIS_IMAGE", "redis:7-alpine"),
			ExposedPorts: []string{string(port)},
			WaitingFor: wait.ForAll(
				wait.ForLog("Ready to accept connections"),
				wait.ForListeningPort(port),
			).WithDeadline(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("start redis container: %w", err)
	}

	host, mapped, err := endpoint(ctx, container, port)
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, "", err
	}
	return container, fmt.Sprintf("redis://%s:%s/0", host, mapped), nil
}

// StartDatabase starts a database container and returns a config pointing
// at it. The container is terminated when the test finishes.
func StartDatabase(t *testing.T, dbType string) *config.Config {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := RunDatabase(context.Background(), dbType)
	if err != nil {
		t.Fatalf("Failed to start database container: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate %s container: %v", dbType, err)
		}
	})
	return &db.Config
}

func endpoint(ctx context.Context, container testcontainers.Container, port nat.Port) (string, string, error) {
	host, err := container.Host(ctx)
	if err != nil {
		return "", "", fmt.Errorf("get container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		return "", "", fmt.Errorf("get container port: %w", err)
	}
	return host, mapped.Port(), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
