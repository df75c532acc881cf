package config

import (
	"log"

	"librahub/internal/adapters/persistence/models"
	"librahub/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedUsers(); err != nil {
		log.Printf("⚠️ User seeder skipped: %v", err)
	}
	if err := s.seedCatalog(); err != nil {
		log.Printf("⚠️ Catalog seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedUsers seeds the default admin and librarian accounts.
// Development only; production accounts are created through the API.
func (s *Seeder) seedUsers() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	adminPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}
	staffPassword, err := password.Hash("staff123456")
	if err != nil {
		return err
	}

	users := []*models.User{
		{
			Username: "admin",
			FullName: "Quản trị viên",
			Email:    "admin@librahub.vn",
			Password: adminPassword,
			Role:     "ADMIN",
			IsActive: true,
		},
		{
			Username: "librarian",
			FullName: "Thủ thư",
			Email:    "librarian@librahub.vn",
			Password: staffPassword,
			Role:     "STAFF",
			IsActive: true,
		},
	}

	for _, user := range users {
		if err := s.db.Create(user).Error; err != nil {
			return err
		}
		log.Printf("✅ Seeded user: %s (%s)", user.Username, user.Role)
	}
	return nil
}

// seedCatalog seeds a starter set of categories and books
func (s *Seeder) seedCatalog() error {
	var count int64
	s.db.Model(&models.Category{}).Count(&count)
	if count > 0 {
		return nil // Catalog already seeded
	}

	categories := []*models.Category{
		{Name: "Văn học", Description: "Tiểu thuyết, truyện ngắn, thơ"},
		{Name: "Khoa học", Description: "Khoa học tự nhiên và ứng dụng"},
		{Name: "Công nghệ", Description: "Lập trình và công nghệ thông tin"},
		{Name: "Kinh tế", Description: "Kinh doanh, tài chính, quản trị"},
	}
	for _, category := range categories {
		if err := s.db.Create(category).Error; err != nil {
			return err
		}
	}

	books := []*models.Book{
		{
			Title:       "Số Đỏ",
			Author:      "Vũ Trọng Phụng",
			CategoryID:  categories[0].ID,
			RentalPrice: 45000,
			Publisher:   "NXB Văn Học",
			Quantity:    5,
			IsHot:       true,
			PublishYear: 1936,
			Available:   true,
		},
		{
			Title:       "Dế Mèn Phiêu Lưu Ký",
			Author:      "Tô Hoài",
			CategoryID:  categories[0].ID,
			RentalPrice: 38000,
			Publisher:   "NXB Kim Đồng",
			Quantity:    8,
			PublishYear: 1941,
			Available:   true,
		},
		{
			Title:       "Lược Sử Thời Gian",
			Author:      "Stephen Hawking",
			CategoryID:  categories[1].ID,
			RentalPrice: 120000,
			Publisher:   "NXB Trẻ",
			Quantity:    3,
			IsHot:       true,
			PublishYear: 1988,
			Available:   true,
		},
		{
			Title:       "Clean Code",
			Author:      "Robert C. Martin",
			CategoryID:  categories[2].ID,
			RentalPrice: 250000,
			Publisher:   "Prentice Hall",
			Quantity:    2,
			PublishYear: 2008,
			Available:   true,
		},
	}
	for _, book := range books {
		if err := s.db.Create(book).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded %d categories and %d books", len(categories), len(books))
	return nil
}
