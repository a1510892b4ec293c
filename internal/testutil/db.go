// Package testutil provides shared fixtures for tests that need a real database.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"warbler/internal/credentials"
	"warbler/internal/database"
	"warbler/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewSQLiteDB returns a migrated, private in-memory SQLite database with
// foreign keys enforced. It is closed when the test ends.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	credentials.Cost = bcrypt.MinCost

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user whose password is "password-<username>".
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	digest, err := credentials.Hash("password-" + username)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: digest,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// CreateMessage inserts a message authored by userID.
func CreateMessage(t testing.TB, db *gorm.DB, userID uint, text string) *models.Message {
	t.Helper()
	m := &models.Message{UserID: userID, Text: text}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create message: %v", err)
	}
	return m
}

// Follow inserts the edge follower -> followed.
func Follow(t testing.TB, db *gorm.DB, follower, followed uint) {
	t.Helper()
	if err := db.Create(&models.Follow{FollowerID: follower, FollowedID: followed}).Error; err != nil {
		t.Fatalf("create follow: %v", err)
	}
}

// Like inserts a like of messageID by userID.
func Like(t testing.TB, db *gorm.DB, userID, messageID uint) {
	t.Helper()
	if err := db.Create(&models.Like{UserID: userID, MessageID: messageID}).Error; err != nil {
		t.Fatalf("create like: %v", err)
	}
}
