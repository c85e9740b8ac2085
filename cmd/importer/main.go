package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/qs3c/vidgen_server/config"
	"github.com/qs3c/vidgen_server/internal/repository"
)

var (
	dryRun     = flag.Bool("dry-run", true, "Dry run mode, don't actually write to the database")
	usersFile  = flag.String("users", "", "Users JSON file (default: storage.users_file)")
	ordersFile = flag.String("orders", "", "Orders JSON file (default: storage.orders_file)")
)

func main() {
	flag.Parse()

	log.Println("Starting JSON to database import...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.Database.Enabled() {
		log.Fatalf("No database configured, set database.dsn or DATABASE_URL")
	}

	if *usersFile == "" {
		*usersFile = cfg.Storage.UsersFile
	}
	if *ordersFile == "" {
		*ordersFile = cfg.Storage.OrdersFile
	}
	src := repository.NewFileStore(*usersFile, *ordersFile)

	dst, err := repository.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer dst.Close()

	stats, err := importStore(src, dst, *dryRun)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Println(strings.Repeat("=", 60))
	log.Println("Import Summary")
	log.Println(strings.Repeat("=", 60))
	log.Printf("Users: %d", stats.Users)
	log.Printf("Orders imported: %d", stats.Orders)
	log.Printf("Orders skipped (already present): %d", stats.Skipped)
	if *dryRun {
		log.Println("DRY RUN MODE - nothing was written")
		log.Println("   Run with -dry-run=false to actually import")
	} else {
		log.Println("Import completed!")
	}
	log.Println(strings.Repeat("=", 60))
}

type importStats struct {
	Users   int
	Orders  int
	Skipped int
}

// importStore 把 src 中的用户和订单复制到 dst，订单按 id 去重，可重复执行。
// 源文件无法解析时直接失败，不会当作空集合导入。
func importStore(src *repository.FileStore, dst repository.Store, dryRun bool) (*importStats, error) {
	if err := src.Check(); err != nil {
		return nil, err
	}

	users, err := src.LoadUsers()
	if err != nil {
		return nil, err
	}
	orders, err := src.LoadOrders()
	if err != nil {
		return nil, err
	}

	stats := &importStats{Users: len(users)}
	if dryRun {
		stats.Orders = len(orders)
		return stats, nil
	}

	if len(users) > 0 {
		if err := dst.SaveUsers(users); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	for _, order := range orders {
		if order.CreatedAt.IsZero() {
			order.CreatedAt = now
		}
		err := dst.AppendOrder(order)
		if errors.Is(err, repository.ErrDuplicateOrder) {
			stats.Skipped++
			continue
		}
		if err != nil {
			return nil, err
		}
		stats.Orders++
	}

	return stats, nil
}
