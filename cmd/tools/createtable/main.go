package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	// DSN needs multiStatements=true for the DDL block below.
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get DB: %v", err)
	}

	sql := `
	CREATE TABLE IF NOT EXISTS products (
	  id VARCHAR(64) NOT NULL,
	  name VARCHAR(255) NOT NULL,
	  price INT NOT NULL,
	  currency CHAR(3) NOT NULL DEFAULT 'EUR',
	  PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS orders (
	  id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	  item_id VARCHAR(64) NOT NULL,
	  quantity INT NOT NULL,
	  amount INT NOT NULL,
	  currency CHAR(3) NOT NULL,
	  status VARCHAR(32) NOT NULL,
	  charge_id VARCHAR(128) NULL,
	  instrument_id VARCHAR(128) NULL,
	  payment_id VARCHAR(128) NULL,
	  failure_reason VARCHAR(255) NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_orders_status (status),
	  KEY ix_orders_instrument_id (instrument_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS gateway_events (
	  id CHAR(36) NOT NULL,
	  event_id VARCHAR(128) NOT NULL,
	  event_type VARCHAR(64) NOT NULL,
	  order_id BIGINT UNSIGNED NULL,
	  payload_json JSON NOT NULL,
	  received_at DATETIME(3) NOT NULL,
	  processed_at DATETIME(3) NULL,
	  process_error VARCHAR(255) NULL,
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_gateway_events_event_id (event_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	INSERT IGNORE INTO products (id, name, price, currency)
	VALUES ('sku42', 'Leather Jacket', 550, 'EUR');
	`

	if _, err := sqlDB.Exec(sql); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	log.Println("Tables created and product seeded.")
}
