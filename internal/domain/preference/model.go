package preference

import "time"

// AuthorPreference remembers the identity a device last signed messages
// with, keyed by an opaque client-chosen key.
type AuthorPreference struct {
	Key       string    `db:"key" json:"key"`
	Author    string    `db:"author" json:"author"`
	Role      string    `db:"role" json:"role"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
