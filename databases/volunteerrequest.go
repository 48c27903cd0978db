package databases

// go generate: mockery --name VolunteerRequestDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aniresq/aniresq-api/models"
)

const volunteerRequestName = "volunteerRequests"

// VolunteerRequestDatabase contains the methods to use with the volunteer request database
type VolunteerRequestDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.VolunteerRequest, error)
	FindWithCitizen(ctx context.Context, filter interface{}) ([]models.VolunteerRequestWithCitizen, error)
	InsertOne(ctx context.Context, request models.VolunteerRequest) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type volunteerRequestDatabase struct {
	db DatabaseHelper
}

// NewVolunteerRequestDatabase initializes a new instance of volunteer request database with the provided db connection
func NewVolunteerRequestDatabase(db DatabaseHelper) VolunteerRequestDatabase {
	return &volunteerRequestDatabase{
		db: db,
	}
}

func (v *volunteerRequestDatabase) FindOne(ctx context.Context, filter interface{}) (*models.VolunteerRequest, error) {
	request := &models.VolunteerRequest{}
	err := v.db.Collection(volunteerRequestName).FindOne(ctx, filter).Decode(request)
	if err != nil {
		return nil, err
	}
	return request, nil
}

// FindWithCitizen returns the matching requests with the citizen's contact
// details joined in from the users collection, newest first.
func (v *volunteerRequestDatabase) FindWithCitizen(ctx context.Context, filter interface{}) ([]models.VolunteerRequestWithCitizen, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         userName,
			"localField":   "citizen",
			"foreignField": "_id",
			"as":           "citizenDetails",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$citizenDetails", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"citizenDetails.password":  0,
			"citizenDetails.otp":       0,
			"citizenDetails.otpExpiry": 0,
		}}},
	}

	cur, err := v.db.Collection(volunteerRequestName).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var requests []models.VolunteerRequestWithCitizen
	if err := cur.Decode(&requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (v *volunteerRequestDatabase) InsertOne(ctx context.Context, request models.VolunteerRequest) (interface{}, error) {
	res, err := v.db.Collection(volunteerRequestName).InsertOne(ctx, request)
	if err != nil {
		return nil, err
	}
	return res.Decode(), nil
}

func (v *volunteerRequestDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return v.db.Collection(volunteerRequestName).UpdateOne(ctx, filter, update, opts...)
}
