package domain

import "time"

// User es el registro de credenciales persistido; se crea una sola vez
// durante el signup y nunca se actualiza ni se elimina.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	FullName     string    `bson:"fullname" json:"fullname"`
	Email        string    `bson:"email" json:"email"`
	Phone        string    `bson:"phone" json:"phone"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"password" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
