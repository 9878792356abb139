// Package model defines the data structures used throughout the application.
package model

import "time"

// Item is a single shopping-list entry owned by a user.
//
// ID, CreatedAt and UpdatedAt are assigned by the store. Quantity is free
// text ("2 lbs", "1 dozen"), never parsed as a number. UserID is a plain
// string key; no foreign key ties it to a User row.
type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Quantity  string    `json:"quantity"`
	Category  string    `json:"category"`
	Completed bool      `json:"completed"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
