package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/aniresq/aniresq-api/api"
	"github.com/aniresq/aniresq-api/config"
	"github.com/aniresq/aniresq-api/databases"
	"github.com/aniresq/aniresq-api/geo"
	"github.com/aniresq/aniresq-api/models"
)

// notifyRadiusMeters is how far out NGOs are notified about a new report
const notifyRadiusMeters = 10000

// maxUpdateMediaFiles caps the media attachments per treatment update
const maxUpdateMediaFiles = 5

// Report handles report lifecycle requests
type Report struct {
	RDB     databases.ReportDatabase
	UDB     databases.UserDatabase
	NDB     databases.NotificationDatabase
	Uploads Uploader
	Hub     *NotificationHub
}

type reportCreateRequest struct {
	IncidentDate string   `json:"incidentDate"`
	Address      string   `json:"address"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	AnimalType   string   `json:"animalType"`
	Behavior     string   `json:"behavior"`
	Injured      string   `json:"injured"`
	HumanHarm    string   `json:"humanHarm"`
}

type treatmentUpdateRequest struct {
	Status          string `json:"status"`
	Description     string `json:"description"`
	VeterinaryNotes string `json:"veterinaryNotes"`
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func parseIncidentDate(s string) (primitive.DateTime, error) {
	if s == "" {
		return 0, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return primitive.NewDateTimeFromTime(t), nil
		}
	}
	return 0, fmt.Errorf("incidentDate %q is not RFC3339 or YYYY-MM-DD", s)
}

// CreateReportHandler creates a report with status Pending. Accepts multipart
// form data with an optional "image" file, or plain JSON.
func (re Report) CreateReportHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())

	var req reportCreateRequest
	var imageURL string

	if isMultipart(r) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			config.ErrorStatus("failed to parse multipart form", http.StatusBadRequest, w, err)
			return
		}
		req.IncidentDate = r.FormValue("incidentDate")
		req.Address = r.FormValue("address")
		req.AnimalType = r.FormValue("animalType")
		req.Behavior = r.FormValue("behavior")
		req.Injured = r.FormValue("injured")
		req.HumanHarm = r.FormValue("humanHarm")
		for _, field := range []string{"latitude", "longitude"} {
			v := r.FormValue(field)
			if v == "" {
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				config.ErrorStatus("failed to parse "+field, http.StatusBadRequest, w, err)
				return
			}
			if field == "latitude" {
				req.Latitude = &f
			} else {
				req.Longitude = &f
			}
		}

		if file, _, err := r.FormFile("image"); err == nil {
			defer file.Close()
			url, err := re.Uploads.Upload(r.Context(), file, uploadFolderReports)
			if err != nil {
				config.ErrorStatus("failed to upload image", http.StatusBadGateway, w, err)
				return
			}
			imageURL = url
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
			return
		}
	}

	if req.Latitude == nil || req.Longitude == nil {
		config.ErrorStatus("latitude and longitude are required", http.StatusBadRequest, w, errors.New("missing location"))
		return
	}
	incidentDate, err := parseIncidentDate(req.IncidentDate)
	if err != nil {
		config.ErrorStatus("failed to parse incidentDate", http.StatusBadRequest, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	report := models.Report{
		ID:           primitive.NewObjectID(),
		ReporterID:   user.ID,
		IncidentDate: incidentDate,
		Address:      req.Address,
		Location:     models.Location{Latitude: *req.Latitude, Longitude: *req.Longitude},
		AnimalType:   req.AnimalType,
		Behavior:     req.Behavior,
		Injured:      req.Injured,
		HumanHarm:    req.HumanHarm,
		Image:        imageURL,
		Status:       models.ReportStatusPending,
		AdminStatus:  models.AdminStatusPending,
		AcceptedBy:   nil,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := report.Validate(); err != nil {
		config.ErrorStatus("invalid report", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if _, err := re.RDB.InsertOne(ctx, report); err != nil {
		config.ErrorStatus("failed to create report", http.StatusInternalServerError, w, err)
		return
	}

	go re.notifyNearbyNgos(report)

	b, err := json.Marshal(report)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// MyReportsHandler returns the caller's own reports, newest first
func (re Report) MyReportsHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	sort := options.Find().SetSort(bson.M{"createdAt": -1})
	dbResp, err := re.RDB.Find(ctx, bson.M{"reporterId": user.ID}, sort)
	if err != nil {
		config.ErrorStatus("failed to get reports", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Report{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReportsHandler returns all reports with reporter details joined in
func (re Report) ReportsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	dbResp, err := re.RDB.FindWithReporter(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get reports", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.ReportWithReporter{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReportByIDHandler returns a report by ID with reporter details joined in
func (re Report) ReportByIDHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	dbResp, err := re.RDB.FindWithReporter(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		config.ErrorStatus("report not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	b, err := json.Marshal(dbResp[0])
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// NearbyReportsHandler returns unclaimed reports inside the bounding box
// around the query point. Only reports still pending on both axes and not yet
// claimed are dispatch-eligible.
func (re Report) NearbyReportsHandler(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	radius, errRadius := strconv.ParseFloat(r.URL.Query().Get("radius"), 64)
	if errLat != nil || errLng != nil || errRadius != nil {
		config.ErrorStatus("lat, lng and radius are required", http.StatusBadRequest, w,
			errors.New("query parameters must be numeric"))
		return
	}

	bounds := geo.BoundingBox(lat, lng, radius)
	filter := bson.M{
		"adminStatus":        models.AdminStatusPending,
		"status":             models.ReportStatusPending,
		"acceptedBy":         nil,
		"location.latitude":  bson.M{"$gte": bounds.MinLat, "$lte": bounds.MaxLat},
		"location.longitude": bson.M{"$gte": bounds.MinLng, "$lte": bounds.MaxLng},
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	dbResp, err := re.RDB.FindWithReporter(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to get nearby reports", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.ReportWithReporter{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AcceptReportHandler claims a report for the calling NGO. The claim is a
// single conditional update guarded on status still being Pending, so under a
// race exactly one caller wins; the loser is told the report is already taken
// and acceptedBy is never reassigned.
func (re Report) AcceptReportHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	after := options.After
	updated, err := re.RDB.FindOneAndUpdate(ctx,
		bson.M{"_id": rID, "status": models.ReportStatusPending, "acceptedBy": nil},
		bson.M{"$set": bson.M{
			"status":     models.ReportStatusAccepted,
			"acceptedBy": user.ID,
			"updatedAt":  now,
		}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("failed to accept report", http.StatusInternalServerError, w, err)
			return
		}
		// guard did not match: either the report is gone or someone beat us to it
		if _, findErr := re.RDB.FindOne(ctx, bson.M{"_id": rID}); findErr != nil {
			config.ErrorStatus("report not found", http.StatusNotFound, w, findErr)
			return
		}
		config.ErrorStatus("report already accepted by another NGO", http.StatusConflict, w, err)
		return
	}

	go re.notifyReporter(*updated, "Your report has been accepted by an NGO")

	b, err := json.Marshal(updated)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AcceptedReportsHandler returns the reports claimed by the calling NGO
func (re Report) AcceptedReportsHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	dbResp, err := re.RDB.FindWithReporter(ctx, bson.M{"acceptedBy": user.ID})
	if err != nil {
		config.ErrorStatus("failed to get accepted reports", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.ReportWithReporter{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateReportHandler writes the report's single treatment slot. Only the NGO
// that accepted the report may post, and every write replaces the previous
// slot wholesale. Accepts multipart form data with up to 5 "media" files, or
// plain JSON.
func (re Report) UpdateReportHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	report, err := re.RDB.FindOne(ctx, bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("report not found", http.StatusNotFound, w, err)
		return
	}
	if report.AcceptedBy == nil || *report.AcceptedBy != user.ID {
		config.ErrorStatus("not authorized to update this report", http.StatusForbidden, w,
			errors.New("caller is not the accepting NGO"))
		return
	}

	var req treatmentUpdateRequest

	if isMultipart(r) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			config.ErrorStatus("failed to parse multipart form", http.StatusBadRequest, w, err)
			return
		}
		req.Status = r.FormValue("status")
		req.Description = r.FormValue("description")
		req.VeterinaryNotes = r.FormValue("veterinaryNotes")
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
			return
		}
	}

	// nothing reaches the blob store until the request is known to be valid
	if !models.ValidTreatmentStatus(req.Status) {
		config.ErrorStatus("invalid treatment status", http.StatusBadRequest, w,
			fmt.Errorf("status must be one of In Treatment, Recovery, Completed, got %q", req.Status))
		return
	}

	mediaURLs := []string{}
	if isMultipart(r) {
		files := r.MultipartForm.File["media"]
		if len(files) > maxUpdateMediaFiles {
			config.ErrorStatus("too many media files", http.StatusBadRequest, w,
				fmt.Errorf("at most %d media files are allowed", maxUpdateMediaFiles))
			return
		}
		for _, fh := range files {
			file, err := fh.Open()
			if err != nil {
				config.ErrorStatus("failed to read media file", http.StatusBadRequest, w, err)
				return
			}
			url, err := re.Uploads.Upload(r.Context(), file, uploadFolderReportUpdates)
			file.Close()
			if err != nil {
				config.ErrorStatus("failed to upload media", http.StatusBadGateway, w, err)
				return
			}
			mediaURLs = append(mediaURLs, url)
		}
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	treatment := models.TreatmentUpdate{
		Status:          req.Status,
		Description:     req.Description,
		VeterinaryNotes: req.VeterinaryNotes,
		Media:           mediaURLs,
		UpdatedAt:       now,
	}

	after := options.After
	updated, err := re.RDB.FindOneAndUpdate(ctx,
		bson.M{"_id": rID},
		bson.M{"$set": bson.M{
			"currentTreatment": treatment,
			"updatedAt":        now,
		}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	)
	if err != nil {
		config.ErrorStatus("failed to update report", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(updated)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// notifyNearbyNgos records a notification for every NGO registered inside the
// notify radius of a new report and pushes it to connected sockets.
// Best-effort: failures are logged, never surfaced to the reporter.
func (re Report) notifyNearbyNgos(report models.Report) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bounds := geo.BoundingBox(report.Location.Latitude, report.Location.Longitude, notifyRadiusMeters)
	ngos, err := re.UDB.Find(ctx, bson.M{
		"role":              models.RoleNgo,
		"isBlacklisted":     false,
		"address.latitude":  bson.M{"$gte": bounds.MinLat, "$lte": bounds.MaxLat},
		"address.longitude": bson.M{"$gte": bounds.MinLng, "$lte": bounds.MaxLng},
	})
	if err != nil {
		zap.S().Warnw("failed to find NGOs for notification", "error", err, "reportId", report.ID.Hex())
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	for _, ngo := range ngos {
		notification := models.Notification{
			ID:        primitive.NewObjectID(),
			Receiver:  ngo.ID,
			Report:    report.ID,
			Message:   "A new animal incident was reported near you",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := re.NDB.InsertOne(ctx, notification); err != nil {
			zap.S().Warnw("failed to record notification", "error", err, "receiver", ngo.ID.Hex())
			continue
		}
		re.Hub.Send(ngo.ID.Hex(), notification)
	}
}

// notifyReporter records a notification for the report's reporter and pushes
// it to their socket if connected. Best-effort.
func (re Report) notifyReporter(report models.Report, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		Receiver:  report.ReporterID,
		Report:    report.ID,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := re.NDB.InsertOne(ctx, notification); err != nil {
		zap.S().Warnw("failed to record notification", "error", err, "receiver", report.ReporterID.Hex())
		return
	}
	re.Hub.Send(report.ReporterID.Hex(), notification)
}
