package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/socialdistribution/node/pkg/internal/database"
	"github.com/socialdistribution/node/pkg/internal/models"
)

// CreateAccount registers a local author. When sign-up approval is required
// the account starts unapproved and cannot log in until staff flips it.
func CreateAccount(name, displayName, password, github string) (models.Author, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Author{}, fmt.Errorf("unable to hash password: %v", err)
	}

	account := models.Author{
		ID:          uuid.New(),
		Name:        name,
		DisplayName: defaultString(displayName, name),
		Github:      github,
		Password:    string(hashed),
		IsActive:    true,
		IsApproved:  !viper.GetBool("security.require_approval"),
	}

	if err := database.C.Create(&account).Error; err != nil {
		return account, fmt.Errorf("unable to create account: %v", err)
	}

	return account, nil
}

// AuthenticateAuthor checks a local author's credential. Shadow rows for
// remote authors are inactive and can never log in.
func AuthenticateAuthor(name, password string) (models.Author, error) {
	var account models.Author
	if err := database.C.
		Where("name = ? AND host = '' AND is_active = ?", name, true).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, fmt.Errorf("invalid credentials")
		}
		return account, fmt.Errorf("unable to look up account: %v", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)) != nil {
		return account, fmt.Errorf("invalid credentials")
	}
	if !account.IsApproved {
		return account, fmt.Errorf("account is pending approval")
	}

	return account, nil
}

// ApproveAccount lets staff activate a pending sign-up.
func ApproveAccount(account models.Author) error {
	if account.IsApproved {
		return nil
	}
	if err := database.C.Model(&account).Update("is_approved", true).Error; err != nil {
		return fmt.Errorf("unable to approve account: %v", err)
	}
	return nil
}
