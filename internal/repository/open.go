package repository

import (
	"log"

	"github.com/qs3c/vidgen_server/config"
	"github.com/qs3c/vidgen_server/internal/database"
)

// Open 启动时选择一次存储后端：配置了数据库用关系型，否则用 JSON 文件
func Open(cfg *config.Config) (Store, error) {
	if !cfg.Database.Enabled() {
		log.Printf("Using JSON file storage (%s, %s)", cfg.Storage.UsersFile, cfg.Storage.OrdersFile)
		store := NewFileStore(cfg.Storage.UsersFile, cfg.Storage.OrdersFile)
		if err := store.Check(); err != nil {
			return nil, err
		}
		upgraded, err := store.Migrate()
		if err != nil {
			return nil, err
		}
		if upgraded > 0 {
			log.Printf("Hashed %d legacy plaintext passwords", upgraded)
		}
		return store, nil
	}

	db, err := database.NewGorm(&cfg.Database)
	if err != nil {
		return nil, err
	}

	store := NewSQLStore(db)
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, err
	}
	log.Printf("Using %s storage", db.Dialector.Name())
	return store, nil
}
