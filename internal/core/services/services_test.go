package services

import (
	"fmt"
	"testing"

	"librahub/internal/adapters/persistence/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type lifecycleFixture struct {
	db    *gorm.DB
	user  *models.User
	staff *models.User
	book  *models.Book
}

func setupLifecycleDB(t *testing.T) *lifecycleFixture {
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

	user := &models.User{Username: "reader", FullName: "Độc giả", Email: "reader@example.com", Password: "x", Role: "USER", IsActive: true}
	staff := &models.User{Username: "librarian", FullName: "Thủ thư", Email: "librarian@example.com", Password: "x", Role: "STAFF", IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	if err := db.Create(staff).Error; err != nil {
		t.Fatalf("failed to seed staff: %v", err)
	}

	category := &models.Category{Name: "Văn học"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	book := &models.Book{
		Title:       "Nhà Giả Kim",
		Author:      "Paulo Coelho",
		CategoryID:  category.ID,
		RentalPrice: 50000,
		Quantity:    1,
		Available:   true,
	}
	if err := db.Create(book).Error; err != nil {
		t.Fatalf("failed to seed book: %v", err)
	}

	return &lifecycleFixture{db: db, user: user, staff: staff, book: book}
}

func (f *lifecycleFixture) bookQuantity(t *testing.T) int {
	t.Helper()
	var book models.Book
	if err := f.db.First(&book, f.book.ID).Error; err != nil {
		t.Fatalf("failed to reload book: %v", err)
	}
	return book.Quantity
}
