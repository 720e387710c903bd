// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Ksavu/launched-lol-admin/internal/storage"
	"github.com/Ksavu/launched-lol-admin/internal/storage/models"
)

// migrationLockID is the advisory lock key held while AutoMigrate runs.
const migrationLockID = 7_310_101

const pgErrUniqueViolation = "23505"

// gormLogger routes GORM logs through zap
type gormLogger struct {
	zapLogger     *zap.Logger
	logLevel      logger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(zapLogger *zap.Logger) logger.Interface {
	return &gormLogger{
		zapLogger:     zapLogger,
		logLevel:      logger.Warn,
		slowThreshold: 200 * time.Millisecond,
	}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		l.zapLogger.Sugar().Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.zapLogger.Sugar().Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		l.zapLogger.Sugar().Errorf(msg, data...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.logLevel >= logger.Error:
		l.zapLogger.Error("query failed", append(fields, zap.Error(err))...)
	case elapsed > l.slowThreshold && l.logLevel >= logger.Warn:
		l.zapLogger.Warn("slow query", fields...)
	case l.logLevel >= logger.Info:
		l.zapLogger.Debug("query", fields...)
	}
}

// postgresStorage implements storage.Storage on PostgreSQL through GORM
type postgresStorage struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStorage connects to dsn and configures the connection pool.
func NewStorage(dsn string, zapLogger *zap.Logger) (storage.Storage, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newGormLogger(zapLogger.Named("gorm")),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &postgresStorage{
		db:     db,
		logger: zapLogger.Named("ledger"),
	}, nil
}

// RunMigrations applies the schema under a session advisory lock so that
// concurrently starting instances migrate once.
func (p *postgresStorage) RunMigrations() error {
	// advisory locks are per connection, so pin one for lock, migrate and unlock
	return p.db.Connection(func(conn *gorm.DB) error {
		var lockObtained bool
		if err := conn.Raw("SELECT pg_try_advisory_lock(?)", migrationLockID).Scan(&lockObtained).Error; err != nil {
			return fmt.Errorf("failed to acquire migration lock: %w", err)
		}
		if !lockObtained {
			return fmt.Errorf("another migration is in progress")
		}
		defer conn.Exec("SELECT pg_advisory_unlock(?)", migrationLockID)

		if err := conn.AutoMigrate(&models.Settlement{}, &models.PoolRecord{}); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	})
}

func (p *postgresStorage) SaveSettlement(ctx context.Context, s *models.Settlement) error {
	err := p.db.WithContext(ctx).Create(s).Error
	if isDuplicateKeyError(err) {
		return fmt.Errorf("settlement %s: %w", s.ID, storage.ErrDuplicateKey)
	}
	return err
}

func (p *postgresStorage) GetSettlement(ctx context.Context, id string) (*models.Settlement, error) {
	var s models.Settlement
	err := p.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (p *postgresStorage) ListSettlements(ctx context.Context, limit, offset int) ([]*models.Settlement, error) {
	var out []*models.Settlement
	err := p.db.WithContext(ctx).
		Order("completed_at desc").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, err
}

func (p *postgresStorage) LatestSettlement(ctx context.Context, tokenMint string) (*models.Settlement, error) {
	var s models.Settlement
	err := p.db.WithContext(ctx).
		Where("token_mint = ?", tokenMint).
		Order("completed_at desc").
		First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (p *postgresStorage) SavePool(ctx context.Context, rec *models.PoolRecord) error {
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_mint"}},
			DoUpdates: clause.AssignmentColumns([]string{"pool_id", "market_id", "lp_mint"}),
		}).
		Create(rec).Error
}

func (p *postgresStorage) PoolsByMint(ctx context.Context, mints []string) (map[string]*models.PoolRecord, error) {
	out := make(map[string]*models.PoolRecord, len(mints))
	if len(mints) == 0 {
		return out, nil
	}

	var recs []*models.PoolRecord
	if err := p.db.WithContext(ctx).Where("token_mint IN ?", mints).Find(&recs).Error; err != nil {
		return nil, err
	}
	for _, rec := range recs {
		out[rec.TokenMint] = rec
	}
	return out, nil
}

func (p *postgresStorage) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	return err
}

// isDuplicateKeyError checks for a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}
	return false
}
