package models

// User holds the structure for the users collection in mongo. These are the
// back-office operators calling the API, not field inspectors.
type User struct {
	ID      string      `json:"_id" bson:"_id"`
	Details UserDetails `json:"user" bson:"user"`
	Version int32       `json:"__v" bson:"__v"`
}

// UserDetails holds the structure for the inner user structure as defined in the
// users collection in mongo. Permissions carries the permission strings the
// middleware gate checks before a request reaches the core (mobilize_inspector,
// edit_equipment, ...).
type UserDetails struct {
	Email       string      `json:"email" bson:"email"`
	Name        string      `json:"name" bson:"name"`
	Username    string      `json:"username" bson:"username"`
	Password    string      `json:"password" bson:"password"`
	Permissions []string    `json:"permissions" bson:"permissions"`
	CreatedAt   interface{} `json:"createdAt" bson:"createdAt"`
	UpdatedAt   interface{} `json:"updatedAt" bson:"updatedAt"`
}

// HasPermission reports whether the user carries the named permission string.
func (d UserDetails) HasPermission(name string) bool {
	for _, p := range d.Permissions {
		if p == name {
			return true
		}
	}
	return false
}
