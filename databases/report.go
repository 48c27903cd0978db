package databases

// go generate: mockery --name ReportDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aniresq/aniresq-api/models"
)

const reportName = "reports"

// ReportDatabase contains the methods to use with the report database
type ReportDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Report, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Report, error)
	FindWithReporter(ctx context.Context, filter interface{}) ([]models.ReportWithReporter, error)
	InsertOne(ctx context.Context, report models.Report) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.Report, error)
	DeleteOne(ctx context.Context, filter interface{}) (int64, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
}

type reportDatabase struct {
	db DatabaseHelper
}

// NewReportDatabase initializes a new instance of report database with the provided db connection
func NewReportDatabase(db DatabaseHelper) ReportDatabase {
	return &reportDatabase{
		db: db,
	}
}

func (c *reportDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Report, error) {
	report := &models.Report{}
	err := c.db.Collection(reportName).FindOne(ctx, filter).Decode(report)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (c *reportDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Report, error) {
	var reports []models.Report
	cur, err := c.db.Collection(reportName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&reports)
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// FindWithReporter returns the matching reports with the reporter's name and
// email joined in from the users collection, newest first.
func (c *reportDatabase) FindWithReporter(ctx context.Context, filter interface{}) ([]models.ReportWithReporter, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         userName,
			"localField":   "reporterId",
			"foreignField": "_id",
			"as":           "reporter",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$reporter", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"reporter.password":  0,
			"reporter.otp":       0,
			"reporter.otpExpiry": 0,
		}}},
	}

	cur, err := c.db.Collection(reportName).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var reports []models.ReportWithReporter
	if err := cur.Decode(&reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *reportDatabase) InsertOne(ctx context.Context, report models.Report) (interface{}, error) {
	res, err := c.db.Collection(reportName).InsertOne(ctx, report)
	if err != nil {
		return nil, err
	}
	return res.Decode(), nil
}

func (c *reportDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(reportName).UpdateOne(ctx, filter, update, opts...)
}

// FindOneAndUpdate applies a single atomic conditional update and returns the
// document as instructed by the options. The accept flow relies on this being
// one round trip: the filter carries the status guard, so a concurrent loser
// sees mongo.ErrNoDocuments rather than clobbering the winner.
func (c *reportDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.Report, error) {
	report := &models.Report{}
	err := c.db.Collection(reportName).FindOneAndUpdate(ctx, filter, update, opts...).Decode(report)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (c *reportDatabase) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(reportName).DeleteOne(ctx, filter)
}

func (c *reportDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(reportName).CountDocuments(ctx, filter)
}
