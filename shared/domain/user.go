package domain

type User struct {
	Id       UserId `bson:"_id,omitempty"`
	Email    Email  `bson:"email"`
	PassHash string `bson:"password"`
}
