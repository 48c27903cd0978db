package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Volunteer request status values
const (
	VolunteerStatusPending  = "pending"
	VolunteerStatusAccepted = "accepted"
	VolunteerStatusRejected = "rejected"
)

// VolunteerRequest holds the structure for the volunteerRequests collection in
// mongo. A citizen offers to volunteer with a specific NGO; the NGO accepts or
// rejects.
type VolunteerRequest struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Citizen   primitive.ObjectID `json:"citizen" bson:"citizen"`
	Ngo       primitive.ObjectID `json:"ngo" bson:"ngo"`
	Status    string             `json:"status" bson:"status"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// CitizenInfo is the subset of the citizen's user document joined into a
// volunteer request listing
type CitizenInfo struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id"`
	Name     string             `json:"name" bson:"name"`
	Email    string             `json:"email" bson:"email"`
	MobileNo string             `json:"mobileno" bson:"mobileno"`
}

// VolunteerRequestWithCitizen is a volunteer request with the citizen's
// contact details joined in for the NGO inbox
type VolunteerRequestWithCitizen struct {
	VolunteerRequest `bson:",inline"`
	CitizenDetails   CitizenInfo `json:"citizenDetails" bson:"citizenDetails"`
}

// ValidVolunteerStatus reports whether s is an NGO-settable request status
func ValidVolunteerStatus(s string) bool {
	return s == VolunteerStatusAccepted || s == VolunteerStatusRejected
}
