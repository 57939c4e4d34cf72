package controllers

import (
	"errors"
	"log"
	"net/http"

	"tickethub/src/db"
	"tickethub/src/models"
	"tickethub/src/types"
	"tickethub/src/utils"

	"gorm.io/gorm"
)

func RegisterUser(body *types.RegisterUserRequestBody) (*models.User, int, error) {
	userType := body.UserType
	if userType == "" {
		userType = types.USER_CUSTOMER
	}
	hash, err := utils.HashPassword(body.Password)
	if err != nil {
		log.Printf("Error hashing password: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	user := models.User{
		Name:     body.Name,
		Email:    body.Email,
		Password: hash,
		Phone:    body.Phone,
		UserType: userType,
		Active:   true,
	}

	database := db.GetDb()
	err = database.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("email = ?", body.Email).First(&existing).Error
		if err == nil {
			return errors.New("email is already registered")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	return &user, http.StatusCreated, nil
}

func LoginUser(body *types.LoginRequestBody) (string, int, error) {
	database := db.GetDb()
	var user models.User
	err := database.Where("email = ?", body.Email).First(&user).Error
	if err != nil || !utils.CheckPassword(user.Password, body.Password) {
		return "", http.StatusUnauthorized, errors.New("invalid credentials")
	}
	if !user.Active {
		return "", http.StatusUnauthorized, errors.New("account is disabled")
	}
	token, err := utils.GenerateJWT(user.Email, user.UserType)
	if err != nil {
		log.Printf("Error signing token: %s\n", err.Error())
		return "", http.StatusInternalServerError, err
	}
	return token, http.StatusOK, nil
}

func UpdateProfile(userID uint, body *types.UpdateProfileRequestBody) (*models.User, int, error) {
	database := db.GetDb()
	var user models.User
	err := database.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		updates := models.User{Name: body.Name, Phone: body.Phone}
		if err := tx.Model(&user).Updates(&updates).Error; err != nil {
			return err
		}
		return tx.First(&user, userID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusNotFound, err
		}
		return nil, http.StatusInternalServerError, err
	}
	return &user, http.StatusOK, nil
}
