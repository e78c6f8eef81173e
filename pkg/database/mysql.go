package database

import (
	"fmt"
	"log"

	"mri_screening_backend/internal/config"
	"mri_screening_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	if err := seedStageCategories(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.UserProfile{},
		&model.TestCategory{},
		&model.QuestionTopic{},
		&model.Question{},
		&model.Test{},
		&model.TestAttempt{},
		&model.Answer{},
		&model.Cohort{},
		&model.CohortMembership{},
		&model.ProctoringEvent{},
		&model.PlagiarismFlag{},
	)
}

// seedStageCategories inserts the four hiring stages on first boot.
func seedStageCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.TestCategory{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	stages := []model.TestCategory{
		{Name: "Cognitive Ability", Slug: "cognitive-ability", StageNumber: 1, PassingScore: 70, IsActive: true,
			Description: "Verbal, numerical and abstract reasoning"},
		{Name: "Detail Orientation", Slug: "detail-orientation", StageNumber: 2, PassingScore: 70, IsActive: true,
			Description: "Image comparison and error spotting"},
		{Name: "Trainability", Slug: "trainability", StageNumber: 3, PassingScore: 70, IsActive: true,
			Description: "Learning from instruction and applying new procedures"},
		{Name: "Domain Knowledge", Slug: "domain-knowledge", StageNumber: 4, PassingScore: 70, IsActive: true,
			Description: "MRI safety, anatomy and imaging fundamentals"},
	}
	for _, s := range stages {
		if err := db.Create(&s).Error; err != nil {
			return err
		}
	}
	return nil
}
