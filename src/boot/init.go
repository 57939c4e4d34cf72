package boot

import (
	"log"

	"tickethub/src/db"
	"tickethub/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Event{},
		&models.TicketType{},
		&models.Order{},
		&models.OrderItem{},
		&models.Ticket{},
		&models.Payment{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}
