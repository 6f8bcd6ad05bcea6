package main

import (
	"context"
	"log"

	"statsboard-backend/config"
	"statsboard-backend/pkg/infrastructure/datastore"
)

func main() {
	config.ReadConfig(config.ReadConfigOption{})

	ctx := context.Background()
	pool, err := datastore.NewPool(ctx)
	if err != nil {
		log.Fatalf("failed opening postgres pool: %v", err)
	}
	defer pool.Close()

	if err := datastore.Migrate(ctx, pool); err != nil {
		log.Fatalf("failed creating schema resources: %v", err)
	}
	log.Println("schema is up to date")
}
