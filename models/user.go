package models

// User is the read-only projection of an identity record this service needs.
// Identity documents are owned by the identity service.
type User struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	Role     string `bson:"role" json:"role"` // "user", "interviewer" or "admin"
	Approved bool   `bson:"approved" json:"approved"`
	FCMToken string `bson:"fcmToken,omitempty" json:"-"`
}
