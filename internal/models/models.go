package models

import (
	"time"
)

type User struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"        json:"-"`
	Username    string    `gorm:"size:150;uniqueIndex;not null"   json:"username"`
	Email       string    `gorm:"size:254;uniqueIndex;not null"   json:"email"`
	FirstName   string    `gorm:"size:150"                        json:"first_name"`
	LastName    string    `gorm:"size:150"                        json:"last_name"`
	Bio         string    `                                       json:"bio"`
	Role        string    `gorm:"size:16;not null;default:user"   json:"role"`
	IsSuperuser bool      `gorm:"not null;default:false"          json:"-"`
	CreatedAt   time.Time `                                       json:"-"`
}

// OwnerID makes a user its own profile owner.
func (u *User) OwnerID() uint { return u.ID }

// ConfirmationCode is the single pending signup code of a user. Only the
// bcrypt hash of the code is stored.
type ConfirmationCode struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    uint      `gorm:"uniqueIndex;not null"`
	CodeHash  string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"       json:"-"`
	Name string `gorm:"size:256;not null"              json:"name"`
	Slug string `gorm:"size:50;uniqueIndex;not null"   json:"slug"`
}

type Genre struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"       json:"-"`
	Name string `gorm:"size:256;not null"              json:"name"`
	Slug string `gorm:"size:50;uniqueIndex;not null"   json:"slug"`
}

type Title struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"              json:"id"`
	Name        string    `gorm:"size:256;not null;index"               json:"name"`
	Year        *int      `gorm:"index"                                 json:"year"`
	Description string    `                                             json:"description"`
	CategoryID  *uint     `gorm:"index"                                 json:"-"`
	Category    *Category `gorm:"constraint:OnDelete:SET NULL"          json:"category"`
	Genres      []Genre   `gorm:"many2many:title_genres"                json:"genre"`
	Rating      *float64  `gorm:"->;-:migration"                        json:"rating"`
}

type Review struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"                          json:"id"`
	TitleID  uint      `gorm:"not null;uniqueIndex:idx_review_title_author"      json:"-"`
	AuthorID uint      `gorm:"not null;uniqueIndex:idx_review_title_author"      json:"-"`
	Author   User      `gorm:"foreignKey:AuthorID"                               json:"-"`
	Text     string    `gorm:"not null"                                          json:"text"`
	Score    int       `gorm:"not null;check:score_range,score >= 1 AND score <= 10" json:"score"`
	PubDate  time.Time `gorm:"autoCreateTime;index"                              json:"pub_date"`
}

func (r *Review) OwnerID() uint { return r.AuthorID }

type Comment struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"   json:"id"`
	ReviewID uint      `gorm:"not null;index"             json:"-"`
	AuthorID uint      `gorm:"not null;index"             json:"-"`
	Author   User      `gorm:"foreignKey:AuthorID"        json:"-"`
	Text     string    `gorm:"not null"                   json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index"       json:"pub_date"`
}

func (c *Comment) OwnerID() uint { return c.AuthorID }

// All lists every table in migration order.
func All() []any {
	return []any{
		&User{},
		&ConfirmationCode{},
		&Category{},
		&Genre{},
		&Title{},
		&Review{},
		&Comment{},
	}
}
