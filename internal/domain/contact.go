package domain

import "time"

type Avatar struct {
	Initials string `json:"initials"`
	Color    string `json:"color"`
}

type Contact struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	FullName    string    `json:"fullName"`
	Phone       string    `json:"phone"`
	CountryCode string    `json:"countryCode"`
	Avatar      Avatar    `json:"avatar"`
	CreatedAt   time.Time `json:"createdAt"`
}
