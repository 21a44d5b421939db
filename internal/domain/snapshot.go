package domain

// Snapshot es el volcado completo del store expuesto en GET /db.
type Snapshot struct {
	Users    []User    `json:"users"`
	Sessions []Session `json:"sessions"`
	Contacts []Contact `json:"contacts"`
	Messages []Message `json:"messages"`
}
