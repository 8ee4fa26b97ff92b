package models

import (
	"time"
)

// Transaction records a completed balance movement from a buyer to a seller.
// UserID (the buyer) is a real foreign key; SellerID is a bare indexed column
// kept compatible with the original schema and validated at creation time.
type Transaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Reference       string    `gorm:"column:reference;size:36;uniqueIndex;not null" json:"reference"`
	UserID          uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	SellerID        uint      `gorm:"column:seller_id;not null;index" json:"seller_id"`
	ItemName        string    `gorm:"column:item_name;size:100;not null" json:"item_name"`
	ItemPrice       float64   `gorm:"column:item_price;not null" json:"item_price"`
	TransactionType string    `gorm:"column:transaction_type;size:50;not null" json:"transaction_type"`
	TransactionDate time.Time `gorm:"column:transaction_date;autoCreateTime" json:"transaction_date"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
