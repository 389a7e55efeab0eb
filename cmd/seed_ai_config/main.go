package main

import (
	"log"
	"os"
	"time"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/model"
	"ai-chatbot-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seeds the ai_configurations keys the chatbot reads at startup. Existing
// rows are left untouched, so edits made by operators survive re-seeding.
func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database
	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting AI Configuration Seeder...")

	inserted, err := seedConfigurations(db)
	if err != nil {
		log.Fatalf("Error: Seeding failed: %v", err)
	}

	log.Printf("Success: %d configuration keys inserted.", inserted)
}

func seedConfigurations(db *gorm.DB) (int64, error) {
	now := time.Now()
	item := func(key, value, category, description string) model.AiConfiguration {
		return model.AiConfiguration{
			Id:          uuid.New(),
			Key:         key,
			Value:       value,
			ValueType:   entity.AiConfigValueTypeString,
			Description: description,
			Category:    category,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	configurations := []model.AiConfiguration{
		item(constant.AiConfigKeyChatMode, constant.DefaultChatModeSetting, entity.AiConfigCategoryLLM,
			"Active generation backend (local or remote)"),
		item(constant.AiConfigKeySystemPrompt, constant.DefaultSystemPrompt, entity.AiConfigCategoryPrompt,
			"Assistant persona and general behaviour"),
		item(constant.AiConfigKeyPreventHallucination, constant.DefaultPreventHallucinationPrompt, entity.AiConfigCategoryPrompt,
			"Instruction to stay within known facts"),
		item(constant.AiConfigKeyCitation, constant.DefaultCitationPrompt, entity.AiConfigCategoryPrompt,
			"Instruction on attributing knowledge base content"),
		item(constant.AiConfigKeyFormatInstruction, constant.DefaultFormatInstruction, entity.AiConfigCategoryPrompt,
			"Answer formatting instruction"),
	}

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&configurations)
	return res.RowsAffected, res.Error
}
