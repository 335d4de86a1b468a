package entities

import "time"

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Password     string    `json:"password"` // bcrypt hash, never plaintext
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"is_admin"`
	Tags         []string  `json:"tags"`
	Wishlist     []int     `json:"wishlist"`
	MaturitaList []int     `json:"maturita_list"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser holds the fields accepted when creating an account.
// Password is plaintext here and hashed by the repository.
type NewUser struct {
	Username string
	Password string
	Email    string
	IsAdmin  bool
	Tags     []string
}

// UserUpdate is a partial update; nil fields are left untouched.
// Password, when set, is plaintext and gets re-hashed.
type UserUpdate struct {
	Password     *string
	Email        *string
	IsAdmin      *bool
	Tags         *[]string
	Wishlist     *[]int
	MaturitaList *[]int
}

// HasBook reports whether id is present in list.
func HasBook(list []int, id int) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
