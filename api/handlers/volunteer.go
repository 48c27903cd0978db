package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aniresq/aniresq-api/api"
	"github.com/aniresq/aniresq-api/config"
	"github.com/aniresq/aniresq-api/databases"
	"github.com/aniresq/aniresq-api/models"
)

// Volunteer handles citizen volunteering requests to NGOs
type Volunteer struct {
	VDB databases.VolunteerRequestDatabase
	UDB databases.UserDatabase
}

// SendRequestHandler lets a citizen ask to volunteer for an NGO. A citizen
// can have at most one request per NGO.
func (v Volunteer) SendRequestHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())

	var req struct {
		NgoID string `json:"ngoId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	ngoID, err := primitive.ObjectIDFromHex(req.NgoID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := v.UDB.FindOne(ctx, bson.M{"_id": ngoID, "role": models.RoleNgo}); err != nil {
		config.ErrorStatus("NGO not found", http.StatusNotFound, w, err)
		return
	}

	if _, err := v.VDB.FindOne(ctx, bson.M{"citizen": user.ID, "ngo": ngoID}); err == nil {
		config.ErrorStatus("Request already sent", http.StatusBadRequest, w, errors.New("duplicate volunteer request"))
		return
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		config.ErrorStatus("failed to check existing request", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	request := models.VolunteerRequest{
		ID:        primitive.NewObjectID(),
		Citizen:   user.ID,
		Ngo:       ngoID,
		Status:    models.VolunteerStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := v.VDB.InsertOne(ctx, request); err != nil {
		config.ErrorStatus("failed to create volunteer request", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(request)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// NgoRequestsHandler returns the volunteer requests addressed to the calling
// NGO with citizen details joined in
func (v Volunteer) NgoRequestsHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	requests, err := v.VDB.FindWithCitizen(ctx, bson.M{"ngo": user.ID})
	if err != nil {
		config.ErrorStatus("failed to get volunteer requests", http.StatusNotFound, w, err)
		return
	}
	if len(requests) == 0 {
		requests = []models.VolunteerRequestWithCitizen{}
	}
	b, err := json.Marshal(requests)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateRequestStatusHandler lets the receiving NGO accept or reject a
// volunteer request
func (v Volunteer) UpdateRequestStatusHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())
	requestID := mux.Vars(r)["request_id"]

	reqID, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if !models.ValidVolunteerStatus(req.Status) {
		config.ErrorStatus("invalid request status", http.StatusBadRequest, w,
			fmt.Errorf("status must be accepted or rejected, got %q", req.Status))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	request, err := v.VDB.FindOne(ctx, bson.M{"_id": reqID})
	if err != nil {
		config.ErrorStatus("volunteer request not found", http.StatusNotFound, w, err)
		return
	}
	if request.Ngo != user.ID {
		config.ErrorStatus("not authorized to update this request", http.StatusForbidden, w,
			errors.New("caller is not the receiving NGO"))
		return
	}

	if _, err := v.VDB.UpdateOne(ctx, bson.M{"_id": reqID}, bson.M{"$set": bson.M{
		"status":    req.Status,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}}); err != nil {
		config.ErrorStatus("failed to update volunteer request", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(map[string]string{"message": "Request status updated"})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
