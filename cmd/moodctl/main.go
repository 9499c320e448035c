// Command moodctl backs up and restores a user's mood records directly
// against the configured store.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/AnshRaj112/serenify-mood/internal/config"
	"github.com/AnshRaj112/serenify-mood/internal/database"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	open := func(backend string) (database.Store, func() error, error) {
		if backend == "" {
			backend = cfg.StoreBackend
		}
		return database.OpenStore(database.StoreOptions{
			Backend:     backend,
			RedisURI:    cfg.RedisURI,
			PostgresURI: cfg.PostgresURI,
			MongoURI:    cfg.MongoURI,
		})
	}

	if err := newRootCmd(open).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
