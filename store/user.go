package store

const (
	// RoleUser is a regular shopper.
	RoleUser = "user"
	// RoleAdmin can manage products, orders and users.
	RoleAdmin = "admin"
)

// User represents a registered account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	AvatarURL    string
	CreatedTs    int64
}

// FindUser specifies the conditions for finding users.
type FindUser struct {
	ID    *string
	Email *string
	Role  *string
}

// UpdateUser specifies the fields to update. Nil fields are left unchanged.
type UpdateUser struct {
	ID        string
	FullName  *string
	AvatarURL *string
}
