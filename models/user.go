package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User roles
const (
	RoleCitizen = "citizen"
	RoleNgo     = "ngo"
	RoleAdmin   = "admin"
)

// User holds the structure for the users collection in mongo
type User struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Email         string             `json:"email" bson:"email"`
	Password      string             `json:"-" bson:"password"`
	MobileNo      string             `json:"mobileno" bson:"mobileno"`
	Role          string             `json:"role" bson:"role"`
	IsBlacklisted bool               `json:"isBlacklisted" bson:"isBlacklisted"`
	Address       *Location          `json:"address,omitempty" bson:"address,omitempty"`
	Image         string             `json:"image,omitempty" bson:"image,omitempty"`

	// NGO registration extras, empty for citizens
	RegiID  string `json:"regiid,omitempty" bson:"regiid,omitempty"`
	AboutUs string `json:"aboutus,omitempty" bson:"aboutus,omitempty"`
	Mission string `json:"mission,omitempty" bson:"mission,omitempty"`

	OTP       string              `json:"-" bson:"otp,omitempty"`
	OTPExpiry *primitive.DateTime `json:"-" bson:"otpExpiry,omitempty"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// ValidRole reports whether r is a member of the role enum
func ValidRole(r string) bool {
	return r == RoleCitizen || r == RoleNgo || r == RoleAdmin
}
