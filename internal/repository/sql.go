package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/vanshika/orders/backend/internal/domain"
)

type transactionRow struct {
	TransactionID int64  `gorm:"primaryKey;autoIncrement:false"`
	UserID        string `gorm:"index"`
	OrderPayload  string
	PaymentMethod string
	Payment       string
	Status        int `gorm:"index"`
	FraudStatus   bool
	StartTime     int64
	EndTime       *int64
	UpdatedAt     time.Time
}

func (transactionRow) TableName() string { return "transactions" }

// SQLRepository stores transactions in a relational table through gorm.
type SQLRepository struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the SQLite database at dsn and
// migrates the schema.
func OpenSQLite(dsn string) (*SQLRepository, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)
	return NewSQLRepository(db)
}

// NewSQLRepository migrates the schema on db and wraps it.
func NewSQLRepository(db *gorm.DB) (*SQLRepository, error) {
	if err := db.AutoMigrate(&transactionRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &SQLRepository{db: db}, nil
}

func (r *SQLRepository) Store(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	assignID(tx)
	snap := tx.Snapshot()
	row := transactionRow{
		TransactionID: snap.TransactionID,
		UserID:        snap.UserID,
		OrderPayload:  rawToString(snap.Order),
		PaymentMethod: snap.PaymentMethod,
		Payment:       rawToString(snap.Payment),
		Status:        int(snap.Status),
		FraudStatus:   snap.FraudStatus,
		StartTime:     snap.TransactionStartTime,
		EndTime:       snap.TransactionEndTime,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save transaction %d: %w", tx.ID, err)
	}
	return tx, nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	var row transactionRow
	err := r.db.WithContext(ctx).First(&row, "transaction_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("transaction %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %d: %w", id, err)
	}
	return domain.FromSnapshot(domain.Snapshot{
		TransactionID:        row.TransactionID,
		UserID:               row.UserID,
		Order:                stringToRaw(row.OrderPayload),
		PaymentMethod:        row.PaymentMethod,
		Payment:              stringToRaw(row.Payment),
		Status:               domain.Status(row.Status),
		FraudStatus:          row.FraudStatus,
		TransactionStartTime: row.StartTime,
		TransactionEndTime:   row.EndTime,
	})
}

// IDs lists stored transaction ids in ascending order.
func (r *SQLRepository) IDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&transactionRow{}).Order("transaction_id").Pluck("transaction_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return ids, nil
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (r *SQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
