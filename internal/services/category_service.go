package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/models"
	"finanzas/internal/pagination"
)

// DefaultCategory describes one entry of the starter category set.
type DefaultCategory struct {
	Name  string
	Type  models.CategoryType
	Icon  string
	Color string
}

// DefaultCategories is the set seeded for new users and restored by a reset.
var DefaultCategories = []DefaultCategory{
	{Name: "Salary", Type: models.CategoryTypeIncome, Icon: "briefcase", Color: "#10b981"},
	{Name: "Freelance", Type: models.CategoryTypeIncome, Icon: "laptop", Color: "#3b82f6"},
	{Name: "Investments", Type: models.CategoryTypeIncome, Icon: "trending-up", Color: "#8b5cf6"},
	{Name: "Other", Type: models.CategoryTypeIncome, Icon: "plus-circle", Color: "#6b7280"},
	{Name: "Food", Type: models.CategoryTypeExpense, Icon: "utensils", Color: "#ef4444"},
	{Name: "Transport", Type: models.CategoryTypeExpense, Icon: "car", Color: "#f97316"},
	{Name: "Housing", Type: models.CategoryTypeExpense, Icon: "home", Color: "#eab308"},
	{Name: "Entertainment", Type: models.CategoryTypeExpense, Icon: "film", Color: "#ec4899"},
	{Name: "Health", Type: models.CategoryTypeExpense, Icon: "heart", Color: "#14b8a6"},
	{Name: "Education", Type: models.CategoryTypeExpense, Icon: "book", Color: "#6366f1"},
	{Name: "Clothing", Type: models.CategoryTypeExpense, Icon: "shirt", Color: "#a855f7"},
	{Name: "Other", Type: models.CategoryTypeExpense, Icon: "more-horizontal", Color: "#64748b"},
}

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

func validCategoryType(t models.CategoryType) bool {
	return t == models.CategoryTypeIncome || t == models.CategoryTypeExpense
}

// CreateCategory creates a new category. Names are unique per user and type.
func (s *categoryService) CreateCategory(
	userID string,
	name string,
	categoryType models.CategoryType,
	description string,
	icon string,
	color string,
) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !validCategoryType(categoryType) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}

	if err := s.ensureUniqueName(s.db, userID, "", name, categoryType); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID:      userID,
		Name:        name,
		Type:        categoryType,
		Description: description,
		Icon:        icon,
		Color:       color,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

func (s *categoryService) ensureUniqueName(db *gorm.DB, userID, exceptID, name string, categoryType models.CategoryType) error {
	q := db.Model(&models.Category{}).Where("user_id = ? AND name = ? AND type = ?", userID, name, categoryType)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategory
	}
	return nil
}

// GetUserCategories retrieves a paginated list of categories for a user,
// optionally restricted to one type.
func (s *categoryService) GetUserCategories(userID string, page pagination.PageRequest, categoryType *models.CategoryType) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Where("user_id = ?", userID)
	if categoryType != nil {
		base = base.Where("type = ?", *categoryType)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Order("type ASC").Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory applies the non-nil fields. The type of a category that is
// referenced by transactions or budgets cannot change.
func (s *categoryService) UpdateCategory(userID, categoryID string, fields CategoryUpdateFields) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	name := category.Name
	categoryType := category.Type
	updates := make(map[string]any)

	if fields.Name != nil && strings.TrimSpace(*fields.Name) != "" {
		name = strings.TrimSpace(*fields.Name)
		updates["name"] = name
	}
	if fields.Type != nil && *fields.Type != category.Type {
		if !validCategoryType(*fields.Type) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
		}
		inUse, err := s.inUse(categoryID)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, apperrors.WithMessage(apperrors.ErrCategoryInUse, "cannot change the type of a category in use")
		}
		categoryType = *fields.Type
		updates["type"] = categoryType
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.Icon != nil {
		updates["icon"] = *fields.Icon
	}
	if fields.Color != nil {
		updates["color"] = *fields.Color
	}

	if len(updates) == 0 {
		return category, nil
	}

	if name != category.Name || categoryType != category.Type {
		if err := s.ensureUniqueName(s.db, userID, categoryID, name, categoryType); err != nil {
			return nil, err
		}
	}

	if err := s.db.Model(category).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetCategoryByID(userID, categoryID)
}

// inUse reports whether any transaction or budget references the category.
func (s *categoryService) inUse(categoryID string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Transaction{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return true, nil
	}
	if err := s.db.Model(&models.Budget{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// DeleteCategory deletes a category that nothing references.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}

	inUse, err := s.inUse(categoryID)
	if err != nil {
		return err
	}
	if inUse {
		return apperrors.ErrCategoryInUse
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SeedDefaultCategories creates every default category the user does not
// already have and returns the ones it created.
func (s *categoryService) SeedDefaultCategories(userID string) ([]models.Category, error) {
	var created []models.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = seedDefaults(tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ResetDefaultCategories removes the user's unreferenced categories and
// restores the default set. Categories still referenced by transactions or
// budgets survive so no record loses its category. Returns the full list.
func (s *categoryService) ResetDefaultCategories(userID string) ([]models.Category, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		usedByTransactions := tx.Model(&models.Transaction{}).Select("category_id").Where("user_id = ?", userID)
		usedByBudgets := tx.Model(&models.Budget{}).Select("category_id").Where("user_id = ?", userID)

		if err := tx.Unscoped().
			Where("user_id = ?", userID).
			Where("id NOT IN (?)", usedByTransactions).
			Where("id NOT IN (?)", usedByBudgets).
			Delete(&models.Category{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		_, err := seedDefaults(tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := s.db.Where("user_id = ?", userID).Order("type ASC").Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

func seedDefaults(tx *gorm.DB, userID string) ([]models.Category, error) {
	var existing []models.Category
	if err := tx.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[string(c.Type)+"/"+c.Name] = true
	}

	var created []models.Category
	for _, d := range DefaultCategories {
		if have[string(d.Type)+"/"+d.Name] {
			continue
		}
		category := models.Category{
			UserID: userID,
			Name:   d.Name,
			Type:   d.Type,
			Icon:   d.Icon,
			Color:  d.Color,
		}
		if err := tx.Create(&category).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		created = append(created, category)
	}
	return created, nil
}
