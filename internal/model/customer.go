package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "individual"
	CustomerTypeEnterprise CustomerType = "enterprise"
)

type CustomerLevel string

const (
	CustomerLevelA CustomerLevel = "A"
	CustomerLevelB CustomerLevel = "B"
	CustomerLevelC CustomerLevel = "C"
	CustomerLevelD CustomerLevel = "D"
)

type CustomerStatus string

const (
	CustomerStatusPotential CustomerStatus = "potential"
	CustomerStatusActive    CustomerStatus = "active"
	CustomerStatusInactive  CustomerStatus = "inactive"
	CustomerStatusLost      CustomerStatus = "lost"
)

type Customer struct {
	Base
	Name          string          `gorm:"size:100;not null" json:"name"`
	Company       string          `gorm:"size:200" json:"company"`
	Industry      string          `gorm:"size:100" json:"industry"`
	CustomerType  CustomerType    `gorm:"size:20;not null;default:individual" json:"customer_type"`
	ContactPerson string          `gorm:"size:50" json:"contact_person"`
	Phone         string          `gorm:"size:20" json:"phone"`
	Mobile        string          `gorm:"size:20" json:"mobile"`
	Email         string          `gorm:"size:120" json:"email"`
	Website       string          `gorm:"size:200" json:"website"`
	Address       string          `gorm:"type:text" json:"address"`
	City          string          `gorm:"size:50" json:"city"`
	Province      string          `gorm:"size:50" json:"province"`
	Country       string          `gorm:"size:50" json:"country"`
	PostalCode    string          `gorm:"size:10" json:"postal_code"`
	Source        string          `gorm:"size:50" json:"source"`
	Level         CustomerLevel   `gorm:"size:2;not null;default:C" json:"level"`
	Status        CustomerStatus  `gorm:"size:20;not null;default:potential" json:"status"`
	CreditLimit   decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0" json:"credit_limit"`
	SalesUserID   *uint           `gorm:"index" json:"sales_user_id,omitempty"`
	SalesUser     *User           `gorm:"foreignKey:SalesUserID" json:"-"`

	FirstContactDate *time.Time `gorm:"type:date" json:"first_contact_date,omitempty"`
	LastContactDate  *time.Time `gorm:"type:date" json:"last_contact_date,omitempty"`
	NextFollowDate   *time.Time `gorm:"type:date" json:"next_follow_date,omitempty"`

	Description string `gorm:"type:text" json:"description"`
	Notes       string `gorm:"type:text" json:"notes"`
	Tags        string `gorm:"size:500" json:"tags"`
}

func (Customer) TableName() string {
	return "customers"
}

// TagList splits the comma-separated tags column.
func (c *Customer) TagList() []string {
	if c.Tags == "" {
		return nil
	}
	parts := strings.Split(c.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// SetTagList stores a tag slice back into the comma-separated column.
func (c *Customer) SetTagList(tags []string) {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	c.Tags = strings.Join(cleaned, ",")
}

// TouchLastContact records the most recent contact date.
func (c *Customer) TouchLastContact(now time.Time) {
	day := dateOnly(now)
	c.LastContactDate = &day
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
