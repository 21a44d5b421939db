package domain

import "time"

// User es un dato de referencia: el core solo lo consulta, nunca lo crea.
type User struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Country   string    `json:"country"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
