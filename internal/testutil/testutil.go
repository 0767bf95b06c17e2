// Package testutil builds the in-memory database and fixtures shared by the
// service, handler and router tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Payphone-Digital/bizsite/internal/model"
	"github.com/Payphone-Digital/bizsite/pkg/database"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with every table migrated.
// The pool is pinned to one connection so all queries see the same memory
// database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	logger.SetLogger(zap.NewNop())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user whose password is the bcrypt hash of password.
func CreateUser(t testing.TB, db *gorm.DB, username, email, password string, role model.Role) *model.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &model.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreateProduct inserts an active product.
func CreateProduct(t testing.TB, db *gorm.DB, name, slug string, featured bool) *model.Product {
	t.Helper()

	product := &model.Product{
		Name:     name,
		Slug:     slug,
		Category: "services",
		Summary:  name + " summary",
		Featured: featured,
		Active:   true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product %s: %v", slug, err)
	}
	return product
}

// Mail is one message captured by RecordingSender.
type Mail struct {
	Kind  string
	To    string
	Token string
	Name  string
}

// RecordingSender keeps every message in memory. Fail makes the next sends
// return that error.
type RecordingSender struct {
	mu   sync.Mutex
	Sent []Mail
	Fail error
}

func (s *RecordingSender) SendPasswordReset(_ context.Context, to, token, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	s.Sent = append(s.Sent, Mail{Kind: "reset", To: to, Token: token, Name: displayName})
	return nil
}

func (s *RecordingSender) SendPasswordChanged(_ context.Context, to, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	s.Sent = append(s.Sent, Mail{Kind: "changed", To: to, Name: displayName})
	return nil
}

// LastToken returns the token from the most recent reset email.
func (s *RecordingSender) LastToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.Sent) - 1; i >= 0; i-- {
		if s.Sent[i].Kind == "reset" {
			return s.Sent[i].Token
		}
	}
	return ""
}

// FixedClock returns a settable clock for services that accept WithClock.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(start time.Time) *FixedClock {
	return &FixedClock{now: start.UTC()}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
