package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	FirstName    string    `gorm:"not null"                 json:"firstName"`
	LastName     string    `gorm:"not null"                 json:"lastName"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Phone        string    `json:"phone"`
	Birthday     time.Time `json:"birthday"`
	Gender       string    `json:"gender"`
	Location     string    `json:"location"`

	Profile          *Profile  `gorm:"foreignKey:UserID"     json:"profile,omitempty"`
	LikesSent        []Like    `gorm:"foreignKey:SenderID"   json:"likesSent,omitempty"`
	LikesReceived    []Like    `gorm:"foreignKey:ReceiverID" json:"likesReceived,omitempty"`
	MessagesSent     []Message `gorm:"foreignKey:SenderID"   json:"messagesSent,omitempty"`
	MessagesReceived []Message `gorm:"foreignKey:ReceiverID" json:"messagesReceived,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"           json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	Description string    `json:"description"`
	Interests   string    `json:"interests"`

	Photos []Photo `gorm:"foreignKey:ProfileID" json:"photos,omitempty"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Photo struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;index;not null" json:"profileId"`
	URL       string    `gorm:"not null"                 json:"url"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Like struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"                         json:"id"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_like_pair" json:"senderId"`
	ReceiverID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_like_pair" json:"receiverId"`
	Timestamp  time.Time `gorm:"not null"                                     json:"timestamp"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	SenderID       uuid.UUID `gorm:"type:uuid;index;not null" json:"senderId"`
	ReceiverID     uuid.UUID `gorm:"type:uuid;index;not null" json:"receiverId"`
	MessageContent string    `gorm:"not null"                 json:"messageContent"`
	Timestamp      time.Time `gorm:"not null"                 json:"timestamp"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
