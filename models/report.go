package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report status values. A report starts Pending and flips to Accepted exactly
// once, when an NGO claims it. There is no transition back to Pending.
const (
	ReportStatusPending  = "Pending"
	ReportStatusAccepted = "Accepted"
)

// Moderation status values, set by admins independently of the dispatch status.
const (
	AdminStatusPending = "Pending"
	AdminStatusTrue    = "True"
	AdminStatusFake    = "Fake"
)

// Treatment status values for the accepting NGO's current treatment record.
const (
	TreatmentStatusInTreatment = "In Treatment"
	TreatmentStatusRecovery    = "Recovery"
	TreatmentStatusCompleted   = "Completed"
)

// Report holds the structure for the reports collection in mongo
type Report struct {
	ID           primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	ReporterID   primitive.ObjectID  `json:"reporterId" bson:"reporterId"`
	IncidentDate primitive.DateTime  `json:"incidentDate,omitempty" bson:"incidentDate,omitempty"`
	Address      string              `json:"address,omitempty" bson:"address,omitempty"`
	Location     Location            `json:"location" bson:"location"`
	AnimalType   string              `json:"animalType,omitempty" bson:"animalType,omitempty"`
	Behavior     string              `json:"behavior,omitempty" bson:"behavior,omitempty"`
	Injured      string              `json:"injured,omitempty" bson:"injured,omitempty"`
	HumanHarm    string              `json:"humanHarm,omitempty" bson:"humanHarm,omitempty"`
	Image        string              `json:"image,omitempty" bson:"image,omitempty"`
	Status       string              `json:"status" bson:"status"`
	AdminStatus  string              `json:"adminStatus" bson:"adminStatus"`
	AcceptedBy   *primitive.ObjectID `json:"acceptedBy" bson:"acceptedBy"`

	// CurrentTreatment is the single treatment slot for the report. Each write
	// from the accepting NGO replaces it wholesale; history is not retained.
	CurrentTreatment *TreatmentUpdate `json:"currentTreatment,omitempty" bson:"currentTreatment,omitempty"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// TreatmentUpdate is the accepting NGO's current status/notes/media record
type TreatmentUpdate struct {
	Status          string             `json:"status" bson:"status"`
	Description     string             `json:"description,omitempty" bson:"description,omitempty"`
	VeterinaryNotes string             `json:"veterinaryNotes,omitempty" bson:"veterinaryNotes,omitempty"`
	Media           []string           `json:"media" bson:"media"`
	UpdatedAt       primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// Location is a WGS84 coordinate pair
type Location struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Validate checks the coordinate ranges, boundaries inclusive
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %v", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %v", l.Longitude)
	}
	return nil
}

// ReporterInfo is the subset of the reporter's user document joined into
// report listings for display
type ReporterInfo struct {
	ID    primitive.ObjectID `json:"_id" bson:"_id"`
	Name  string             `json:"name" bson:"name"`
	Email string             `json:"email" bson:"email"`
}

// ReportWithReporter is a report with the reporter's name and email joined in
type ReportWithReporter struct {
	Report   `bson:",inline"`
	Reporter ReporterInfo `json:"reporter" bson:"reporter"`
}

var animalTypes = map[string]bool{"pet": true, "wild": true, "stray": true}
var behaviors = map[string]bool{"aggressive": true, "normal": true, "unknown": true}
var injuredValues = map[string]bool{"yes": true, "no": true, "unknown": true}
var humanHarmValues = map[string]bool{"injured": true, "no": true, "death": true}
var treatmentStatuses = map[string]bool{
	TreatmentStatusInTreatment: true,
	TreatmentStatusRecovery:    true,
	TreatmentStatusCompleted:   true,
}
var adminStatuses = map[string]bool{
	AdminStatusPending: true,
	AdminStatusTrue:    true,
	AdminStatusFake:    true,
}

// Validate checks the report's location and enum fields. The enum fields are
// optional; when present they must be members of their enumerations.
func (r Report) Validate() error {
	if err := r.Location.Validate(); err != nil {
		return err
	}
	if r.AnimalType != "" && !animalTypes[r.AnimalType] {
		return fmt.Errorf("animalType must be one of pet, wild, stray, got %q", r.AnimalType)
	}
	if r.Behavior != "" && !behaviors[r.Behavior] {
		return fmt.Errorf("behavior must be one of aggressive, normal, unknown, got %q", r.Behavior)
	}
	if r.Injured != "" && !injuredValues[r.Injured] {
		return fmt.Errorf("injured must be one of yes, no, unknown, got %q", r.Injured)
	}
	if r.HumanHarm != "" && !humanHarmValues[r.HumanHarm] {
		return fmt.Errorf("humanHarm must be one of injured, no, death, got %q", r.HumanHarm)
	}
	return nil
}

// ValidTreatmentStatus reports whether s is a member of the treatment status enum
func ValidTreatmentStatus(s string) bool {
	return treatmentStatuses[s]
}

// ValidAdminStatus reports whether s is a member of the moderation status enum
func ValidAdminStatus(s string) bool {
	return adminStatuses[s]
}
