package database

import (
	"github.com/socialdistribution/node/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.Author{},
	&models.FollowRequest{},
	&models.Entry{},
	&models.Comment{},
	&models.RemoteNode{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(
		append(
			AutoMaintainRange,
			&models.InboxActivity{},
		)...,
	); err != nil {
		return err
	}

	return nil
}
