package models

import (
	"time"

	"github.com/mattn/go-nulltype"
	"gorm.io/gorm"
)

type CommandKind string

const (
	CommandKindMove    CommandKind = "move"
	CommandKindGripper CommandKind = "gripper"
	CommandKindScript  CommandKind = "script"
	CommandKindResult  CommandKind = "result"
)

// Command is one audited panel action or inbound script result.
type Command struct {
	ID      uint                `json:"id" gorm:"primaryKey"`
	Kind    CommandKind         `json:"kind" gorm:"index"`
	Detail  string              `json:"detail"`
	Outcome string              `json:"outcome"`
	Error   nulltype.NullString `json:"error"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (c Command) TableName() string {
	return "commands"
}

func CreateCommand(db *gorm.DB, command *Command) error {
	return db.Create(command).Error
}

// ListRecentCommands returns up to limit commands, newest first.
func ListRecentCommands(db *gorm.DB, limit int) ([]Command, error) {
	var commands []Command
	err := db.Order("created_at desc").Order("id desc").Limit(limit).Find(&commands).Error
	return commands, err
}

func ListCommandsByKind(db *gorm.DB, kind CommandKind, limit int) ([]Command, error) {
	var commands []Command
	err := db.Where("kind = ?", kind).Order("created_at desc").Order("id desc").Limit(limit).Find(&commands).Error
	return commands, err
}

func CountCommands(db *gorm.DB) (int, error) {
	var count int64
	err := db.Model(&Command{}).Count(&count).Error
	return int(count), err
}
