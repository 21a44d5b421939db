package domain

import "time"

// Session prueba un login exitoso. Su vigencia se mide desde CreatedAt.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Phone     string    `json:"phone"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"createdAt"`
}

// ElapsedHours devuelve las horas completas transcurridas desde la creacion.
func (s Session) ElapsedHours(now time.Time) int64 {
	elapsed := now.Sub(s.CreatedAt)
	if elapsed < 0 {
		return 0
	}
	return int64(elapsed / time.Hour)
}
