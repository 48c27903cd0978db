package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Notification holds the structure for the notifications collection in mongo.
// Delivery over the websocket hub is best-effort; the record is the source of
// truth.
type Notification struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Receiver  primitive.ObjectID `json:"receiver" bson:"receiver"`
	Report    primitive.ObjectID `json:"report" bson:"report"`
	Message   string             `json:"message" bson:"message"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
