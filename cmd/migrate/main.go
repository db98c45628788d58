package main

import (
	"fmt"
	"os"

	"inboxhub/backend/internal/config"
	"inboxhub/backend/internal/storage/postgres"
	sqlstore "inboxhub/backend/internal/storage/sql"
)

// main 对配置的数据库执行一次性表结构迁移后退出。
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	switch cfg.Database.Type {
	case "memory":
		fmt.Println("memory storage requires no migration")
		return
	case "pgx":
		store, err := postgres.NewStore(&cfg.Database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		store.Close()
	default:
		store, err := sqlstore.NewStore(
			cfg.Database.Type,
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		store.Close()
	}

	fmt.Println("migration completed")
}
