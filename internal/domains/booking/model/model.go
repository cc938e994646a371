package model

import (
	"shareit/shared/model"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID        = "id"
	FieldStartDate = "start_date"
	FieldEndDate   = "end_date"
	FieldStatus    = "status"
	FieldItemID    = "item_id"
	FieldBookerID  = "booker_id"
)

type Booking struct {
	ID        string    `db:"id"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	Status    Status    `db:"status"`
	ItemID    string    `db:"item_id"`
	BookerID  string    `db:"booker_id"`

	// Materialized through the join, never written back.
	ItemName    string `db:"item_name"   table:"items" column:"name"`
	ItemOwnerID string `db:"owner_id"    table:"items" column:"owner_id"`
	BookerName  string `db:"booker_name" table:"users" column:"name"`

	model.Metadata
}

func (Booking) GetJoinQuery() string {
	return "JOIN items ON items.id = bookings.item_id JOIN users ON users.id = bookings.booker_id"
}
