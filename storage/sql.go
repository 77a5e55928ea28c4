package storage

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// kvRecord is one row of the key-value table.
type kvRecord struct {
	Key   string `gorm:"column:entry_key;primaryKey;size:512"`
	Value []byte `gorm:"column:entry_value"`
}

func (kvRecord) TableName() string { return "aave_kv" }

// SQLDB stores keys in a single SQL table so several operators can share a
// journal through Postgres.
type SQLDB struct {
	db *gorm.DB
}

// NewSQLDB opens dialector and creates the table when missing.
func NewSQLDB(dialector gorm.Dialector) (*SQLDB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&kvRecord{}); err != nil {
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}
	return &SQLDB{db: db}, nil
}

func (s *SQLDB) Put(key []byte, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	return s.db.Save(&kvRecord{Key: string(key), Value: stored}).Error
}

func (s *SQLDB) Get(key []byte) ([]byte, error) {
	var rec kvRecord
	if err := s.db.First(&rec, "entry_key = ?", string(key)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec.Value, nil
}

// Iterate orders keys bytewise in Go; database collations do not.
func (s *SQLDB) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	var recs []kvRecord
	query := s.db.Model(&kvRecord{})
	if len(prefix) > 0 {
		query = query.Where(`entry_key LIKE ? ESCAPE '\'`, escapeLike(string(prefix))+"%")
	}
	if err := query.Find(&recs).Error; err != nil {
		return err
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })
	for _, rec := range recs {
		// SQLite LIKE ignores ASCII case.
		if !bytes.HasPrefix([]byte(rec.Key), prefix) {
			continue
		}
		if !fn([]byte(rec.Key), rec.Value) {
			break
		}
	}
	return nil
}

func (s *SQLDB) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

// OpenDatabase opens the store named by target: a postgres:// URL, a
// sqlite:// file, or otherwise a LevelDB directory.
func OpenDatabase(target string) (Database, error) {
	target = strings.TrimSpace(target)
	switch {
	case target == "":
		return nil, errors.New("storage: empty database target")
	case strings.HasPrefix(target, "postgres://"), strings.HasPrefix(target, "postgresql://"):
		return NewSQLDB(postgres.Open(target))
	case strings.HasPrefix(target, "sqlite://"):
		return NewSQLDB(sqlite.Open(strings.TrimPrefix(target, "sqlite://")))
	default:
		return NewLevelDB(target)
	}
}
