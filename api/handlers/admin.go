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

	"github.com/aniresq/aniresq-api/api"
	"github.com/aniresq/aniresq-api/config"
	"github.com/aniresq/aniresq-api/databases"
	"github.com/aniresq/aniresq-api/models"
)

// Admin handles moderation and platform management
type Admin struct {
	RDB databases.ReportDatabase
	UDB databases.UserDatabase
}

// SetAdminStatusHandler sets a report's moderation verdict. Any verdict can
// replace any other, including reversing an earlier Fake marking.
func (a Admin) SetAdminStatusHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req struct {
		AdminStatus string `json:"adminStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if !models.ValidAdminStatus(req.AdminStatus) {
		config.ErrorStatus("invalid admin status", http.StatusBadRequest, w,
			fmt.Errorf("adminStatus must be Pending, True or Fake, got %q", req.AdminStatus))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	res, err := a.RDB.UpdateOne(ctx, bson.M{"_id": rID}, bson.M{"$set": bson.M{
		"adminStatus": req.AdminStatus,
		"updatedAt":   primitive.NewDateTimeFromTime(time.Now()),
	}})
	if err != nil {
		config.ErrorStatus("failed to update admin status", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("report not found", http.StatusNotFound, w, errors.New("no report matched"))
		return
	}

	b, _ := json.Marshal(map[string]string{"message": "Admin status updated"})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteFakeReportHandler removes a report, but only one already marked Fake.
// Deleting is the only destructive moderation action and it is gated on the
// verdict so genuine reports cannot be removed by mistake.
func (a Admin) DeleteFakeReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	report, err := a.RDB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("report not found", http.StatusNotFound, w, err)
		return
	}
	if report.AdminStatus != models.AdminStatusFake {
		config.ErrorStatus("only fake reports can be deleted", http.StatusBadRequest, w,
			fmt.Errorf("report adminStatus is %q", report.AdminStatus))
		return
	}

	if _, err := a.RDB.DeleteOne(ctx, bson.M{"_id": rID}); err != nil {
		config.ErrorStatus("failed to delete report", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(map[string]string{"message": "Report deleted"})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func (a Admin) writeUsers(w http.ResponseWriter, r *http.Request, filter bson.M) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	users, err := a.UDB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to get users", http.StatusNotFound, w, err)
		return
	}
	if len(users) == 0 {
		users = []models.User{}
	}
	b, err := json.Marshal(users)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UsersHandler returns all non-admin users
func (a Admin) UsersHandler(w http.ResponseWriter, r *http.Request) {
	a.writeUsers(w, r, bson.M{"role": bson.M{"$ne": models.RoleAdmin}})
}

// NgoUsersHandler returns all NGO accounts
func (a Admin) NgoUsersHandler(w http.ResponseWriter, r *http.Request) {
	a.writeUsers(w, r, bson.M{"role": models.RoleNgo})
}

// CitizenUsersHandler returns all citizen accounts
func (a Admin) CitizenUsersHandler(w http.ResponseWriter, r *http.Request) {
	a.writeUsers(w, r, bson.M{"role": models.RoleCitizen})
}

// BlacklistedHandler returns all blacklisted accounts
func (a Admin) BlacklistedHandler(w http.ResponseWriter, r *http.Request) {
	a.writeUsers(w, r, bson.M{"isBlacklisted": true})
}

func (a Admin) setBlacklist(w http.ResponseWriter, r *http.Request, blacklisted bool) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	res, err := a.UDB.UpdateOne(ctx, bson.M{"_id": uID}, bson.M{"$set": bson.M{
		"isBlacklisted": blacklisted,
		"updatedAt":     primitive.NewDateTimeFromTime(time.Now()),
	}})
	if err != nil {
		config.ErrorStatus("failed to update user", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("user not found", http.StatusNotFound, w, errors.New("no user matched"))
		return
	}

	message := "User blacklisted"
	if !blacklisted {
		message = "User removed from blacklist"
	}
	b, _ := json.Marshal(map[string]string{"message": message})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// BlacklistUserHandler blocks a user from the platform
func (a Admin) BlacklistUserHandler(w http.ResponseWriter, r *http.Request) {
	a.setBlacklist(w, r, true)
}

// UnblacklistUserHandler restores a blocked user
func (a Admin) UnblacklistUserHandler(w http.ResponseWriter, r *http.Request) {
	a.setBlacklist(w, r, false)
}

// DeleteUserHandler removes a user account
func (a Admin) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	deleted, err := a.UDB.DeleteOne(ctx, bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to delete user", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("user not found", http.StatusNotFound, w, errors.New("no user matched"))
		return
	}

	b, _ := json.Marshal(map[string]string{"message": "User deleted"})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type dashboardStats struct {
	TotalReports     int64 `json:"totalReports"`
	OngoingCases     int64 `json:"ongoingCases"`
	CompletedCases   int64 `json:"completedCases"`
	BlacklistedUsers int64 `json:"blacklistedUsers"`
}

// DashboardStatsHandler returns the admin dashboard counters
func (a Admin) DashboardStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var stats dashboardStats
	var err error
	if stats.TotalReports, err = a.RDB.CountDocuments(ctx, bson.M{}); err != nil {
		config.ErrorStatus("failed to count reports", http.StatusInternalServerError, w, err)
		return
	}
	if stats.OngoingCases, err = a.RDB.CountDocuments(ctx, bson.M{
		"status":                  models.ReportStatusAccepted,
		"currentTreatment.status": bson.M{"$ne": models.TreatmentStatusCompleted},
	}); err != nil {
		config.ErrorStatus("failed to count ongoing cases", http.StatusInternalServerError, w, err)
		return
	}
	if stats.CompletedCases, err = a.RDB.CountDocuments(ctx, bson.M{
		"currentTreatment.status": models.TreatmentStatusCompleted,
	}); err != nil {
		config.ErrorStatus("failed to count completed cases", http.StatusInternalServerError, w, err)
		return
	}
	if stats.BlacklistedUsers, err = a.UDB.CountDocuments(ctx, bson.M{"isBlacklisted": true}); err != nil {
		config.ErrorStatus("failed to count blacklisted users", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(stats)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
