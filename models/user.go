package models

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is an API user with bcrypt-hashed password.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID       uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Username string    `bun:"username,notnull,unique" json:"username"`
	Password string    `bun:"password,notnull" json:"-"`
}
