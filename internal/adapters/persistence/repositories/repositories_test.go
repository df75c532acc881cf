package repositories

import (
	"fmt"
	"testing"

	"librahub/internal/adapters/persistence/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return db
}

func seedBook(t *testing.T, db *gorm.DB, quantity int, available bool) *models.Book {
	t.Helper()
	category := &models.Category{Name: fmt.Sprintf("Thể loại %s", t.Name())}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	book := &models.Book{
		Title:       "Dế Mèn Phiêu Lưu Ký",
		Author:      "Tô Hoài",
		CategoryID:  category.ID,
		RentalPrice: 50000,
		Quantity:    quantity,
		Available:   available,
	}
	if err := db.Create(book).Error; err != nil {
		t.Fatalf("failed to seed book: %v", err)
	}
	// GORM omits zero-value fields that carry a default tag on insert, so
	// Available=false must be forced after the create.
	if !available {
		if err := db.Model(book).UpdateColumn("available", false).Error; err != nil {
			t.Fatalf("failed to seed book availability: %v", err)
		}
	}
	return book
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		FullName: "Người dùng " + username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}
