package mysql

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/rental/internal/infrastructure/config"
)

// NewDB opens the connection pool.
// Design notes:
// 1. pool sizes come from config (MaxOpenConns, MaxIdleConns, ConnMaxLifetime)
// 2. SQL logging follows database.log_level, silent unless asked for
// 3. AutoMigrate only runs when store.auto_migrate is set
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(cfg.Database.LogLevel)),
		NowFunc:        time.Now,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("db", cfg.Database.DBName),
	)

	if cfg.Store.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		log.Info("database migrated")
	}
	return db, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}

// AutoMigrate creates or extends the tables. It never drops columns;
// production schemas should go through versioned migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&InventoryModel{},
		&InventoryLogModel{},
		&BookingModel{},
		&BookingItemModel{},
		&OrderModel{},
		&OrderItemModel{},
		&FulfillmentModel{},
		&PaymentModel{},
		&RefundModel{},
	)
}

// InventoryModel one row per product; the product id is the key.
type InventoryModel struct {
	ProductID uint `gorm:"primaryKey;autoIncrement:false"`
	Quantity  int  `gorm:"not null;default:0;comment:total owned"`
	Reserved  int  `gorm:"not null;default:0;comment:held by active orders"`
	Available int  `gorm:"not null;default:0;comment:quantity - reserved"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (InventoryModel) TableName() string {
	return "inventory"
}

type InventoryLogModel struct {
	ID              uint   `gorm:"primaryKey"`
	ProductID       uint   `gorm:"index;not null"`
	ChangeType      string `gorm:"size:20;not null"`
	Quantity        int    `gorm:"not null;comment:signed change of available"`
	BeforeAvailable int    `gorm:"not null"`
	AfterAvailable  int    `gorm:"not null"`
	OrderID         uint   `gorm:"index"`
	Remark          string `gorm:"size:255"`
	CreatedAt       time.Time
}

func (InventoryLogModel) TableName() string {
	return "inventory_logs"
}

type BookingModel struct {
	ID          uint               `gorm:"primaryKey"`
	BookingNo   string             `gorm:"uniqueIndex;size:32;not null"`
	CustomerID  uint               `gorm:"index;not null"`
	StartAt     time.Time          `gorm:"not null"`
	EndAt       time.Time          `gorm:"not null"`
	Status      int                `gorm:"not null;default:1;comment:1 pending 2 success 3 cancelled"`
	AmountPaid  int64              `gorm:"not null;default:0"`
	TotalAmount int64              `gorm:"not null;default:0"`
	CreatedBy   uint               `gorm:"not null"`
	UpdatedBy   uint               `gorm:"not null"`
	Items       []BookingItemModel `gorm:"foreignKey:BookingID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (BookingModel) TableName() string {
	return "bookings"
}

type BookingItemModel struct {
	ID         uint  `gorm:"primaryKey"`
	BookingID  uint  `gorm:"index;not null"`
	ProductID  uint  `gorm:"not null"`
	Quantity   int   `gorm:"not null"`
	UnitPrice  int64 `gorm:"not null"`
	TotalPrice int64 `gorm:"not null"`
}

func (BookingItemModel) TableName() string {
	return "booking_items"
}

type OrderModel struct {
	ID           uint               `gorm:"primaryKey"`
	OrderNo      string             `gorm:"uniqueIndex;size:32;not null"`
	BookingID    uint               `gorm:"index;not null"`
	Status       int                `gorm:"not null;default:1;comment:1 created 2 initiated 3 delivered 4 inreturn 5 returned"`
	SubTotal     int64              `gorm:"not null;default:0"`
	Discount     int64              `gorm:"not null;default:0"`
	Tax          int64              `gorm:"not null;default:0"`
	TotalAmount  int64              `gorm:"not null;default:0"`
	AmountPaid   int64              `gorm:"not null;default:0"`
	CreatedBy    uint               `gorm:"not null"`
	UpdatedBy    uint               `gorm:"not null"`
	Items        []OrderItemModel   `gorm:"foreignKey:OrderID"`
	Fulfillments []FulfillmentModel `gorm:"foreignKey:OrderID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel owned and outsourced lines share the table;
// exactly one of ProductID and OutsourcedProductID is set.
type OrderItemModel struct {
	ID                  uint  `gorm:"primaryKey"`
	OrderID             uint  `gorm:"index;not null"`
	ProductID           uint  `gorm:"not null;default:0"`
	OutsourcedProductID uint  `gorm:"not null;default:0"`
	Quantity            int   `gorm:"not null"`
	UnitPrice           int64 `gorm:"not null"`
	TotalPrice          int64 `gorm:"not null"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

// FulfillmentModel dispatch and return records, told apart by Kind.
type FulfillmentModel struct {
	ID                  uint      `gorm:"primaryKey"`
	OrderID             uint      `gorm:"index;not null"`
	Kind                string    `gorm:"size:10;not null;comment:dispatch | return"`
	ProductID           uint      `gorm:"not null;default:0"`
	OutsourcedProductID uint      `gorm:"not null;default:0"`
	Quantity            int       `gorm:"not null"`
	At                  time.Time `gorm:"not null"`
	Actor               uint      `gorm:"not null"`
	Status              string    `gorm:"size:20;not null"`
	CreatedAt           time.Time
}

func (FulfillmentModel) TableName() string {
	return "order_fulfillments"
}

type PaymentModel struct {
	ID        uint   `gorm:"primaryKey"`
	PaymentNo string `gorm:"uniqueIndex;size:40;not null"`
	BookingID uint   `gorm:"index;not null"`
	OrderID   uint   `gorm:"index"`
	Amount    int64  `gorm:"not null"`
	Method    string `gorm:"size:30;not null"`
	Type      string `gorm:"size:10;not null;comment:credit | debit"`
	State     string `gorm:"size:10;not null;comment:partial | complete"`
	Status    string `gorm:"size:10;not null"`
	Stage     string `gorm:"size:10;not null"`
	Actor     uint   `gorm:"not null"`
	CreatedAt time.Time
}

func (PaymentModel) TableName() string {
	return "payments"
}

type RefundModel struct {
	ID         uint   `gorm:"primaryKey"`
	RefundNo   string `gorm:"uniqueIndex;size:40;not null"`
	PaymentID  uint   `gorm:"index;not null"`
	BookingID  uint   `gorm:"index;not null"`
	Amount     int64  `gorm:"not null"`
	Reason     string `gorm:"size:255"`
	Status     string `gorm:"size:10;not null"`
	ResolvedBy uint
	ResolvedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (RefundModel) TableName() string {
	return "refunds"
}

func deletedAt(d gorm.DeletedAt) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}
