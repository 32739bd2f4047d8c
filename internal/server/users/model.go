package users

import "time"

// User is an entry in the site's user directory. Form submissions are
// accepted only when their submitter key resolves to one of these.
type User struct {
	ID         int64
	Username   string
	FullName   string
	Role       string
	TelegramID string
	Active     bool
	CreatedAt  time.Time
}
