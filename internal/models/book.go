package models

import "time"

type Book struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusText is the display label derived from stock. Never persisted.
func (b Book) StatusText() string {
	if b.Quantity > 0 {
		return "Available"
	}
	return "Out of Stock"
}
