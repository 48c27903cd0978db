package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aniresq/aniresq-api/api"
	"github.com/aniresq/aniresq-api/api/handlers"
	"github.com/aniresq/aniresq-api/databases/mocks"
	"github.com/aniresq/aniresq-api/geo"
	"github.com/aniresq/aniresq-api/models"
)

func citizenUser() *models.User {
	return &models.User{
		ID:   primitive.NewObjectID(),
		Name: "Asha Kulkarni",
		Role: models.RoleCitizen,
	}
}

func ngoUser() *models.User {
	return &models.User{
		ID:   primitive.NewObjectID(),
		Name: "Paws & Claws Rescue",
		Role: models.RoleNgo,
	}
}

func authedRequest(method, target string, body string, user *models.User) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(api.ContextWithUser(req.Context(), user))
}

func TestReport_CreateReportHandler_MissingLocation(t *testing.T) {
	mockRDB := &mocks.ReportDatabase{}
	re := handlers.Report{RDB: mockRDB}

	body := `{"animalType": "stray", "address": "FC Road, Pune"}`
	req := authedRequest("POST", "/api/v1/reports", body, citizenUser())
	rr := httptest.NewRecorder()

	re.CreateReportHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockRDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestReport_CreateReportHandler_LatitudeOutOfRange(t *testing.T) {
	mockRDB := &mocks.ReportDatabase{}
	re := handlers.Report{RDB: mockRDB}

	body := `{"latitude": 91, "longitude": 73.85}`
	req := authedRequest("POST", "/api/v1/reports", body, citizenUser())
	rr := httptest.NewRecorder()

	re.CreateReportHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockRDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestReport_CreateReportHandler_Success(t *testing.T) {
	mockRDB := &mocks.ReportDatabase{}
	mockUDB := &mocks.UserDatabase{}
	mockNDB := &mocks.NotificationDatabase{}
	re := handlers.Report{RDB: mockRDB, UDB: mockUDB, NDB: mockNDB}

	mockRDB.On("InsertOne", mock.Anything, mock.AnythingOfType("models.Report")).Return(primitive.NewObjectID(), nil)
	// the NGO fan-out runs in the background and may or may not finish before
	// the test does
	mockUDB.On("Find", mock.Anything, mock.Anything).Return([]models.User{}, nil).Maybe()

	// latitude 90 sits exactly on the boundary and must be accepted
	body := `{"latitude": 90, "longitude": 73.85, "animalType": "stray", "injured": "yes"}`
	req := authedRequest("POST", "/api/v1/reports", body, citizenUser())
	rr := httptest.NewRecorder()

	re.CreateReportHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.Report
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, models.ReportStatusPending, created.Status)
	assert.Equal(t, models.AdminStatusPending, created.AdminStatus)
	assert.Nil(t, created.AcceptedBy)
	assert.Nil(t, created.CurrentTreatment)
	mockRDB.AssertCalled(t, "InsertOne", mock.Anything, mock.AnythingOfType("models.Report"))
}

func TestReport_NearbyReportsHandler_MissingParams(t *testing.T) {
	mockRDB := &mocks.ReportDatabase{}
	re := handlers.Report{RDB: mockRDB}

	req := authedRequest("GET", "/api/v1/reports/nearby?lat=18.52", "", ngoUser())
	rr := httptest.NewRecorder()

	re.NearbyReportsHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReport_NearbyReportsHandler_FiltersUnclaimedPending(t *testing.T) {
	mockRDB := &mocks.ReportDatabase{}
	re := handlers.Report{RDB: mockRDB}

	var captured bson.M
	mockRDB.On("FindWithReporter", mock.Anything, mock.MatchedBy(func(filter interface{}) bool {
		m, ok := filter.(bson.M)
		if ok {
			captured = m
		}
		return ok
	})).Return([]models.ReportWithReporter{}, nil)

	req := authedRequest("GET", "/api/v1/reports/nearby?lat=18.52&lng=73.85&radius=5000", "", ngoUser())
	rr := httptest.NewRecorder()

	re.NearbyReportsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.ReportStatusPending, captured["status"])
	assert.Equal(t, models.AdminStatusPending, captured["adminStatus"])
	assert.Nil(t, captured["acceptedBy"])

	// radius 5000m around (18.52, 73.85) must span roughly 0.045 degrees
	latBounds := captured["location.latitude"].(bson.M)
	assert.InDelta(t, 18.52-5000.0/111000.0, latBounds["$gte"], 1e-9)
	assert.InDelta(t, 18.52+5000.0/111000.0, latBounds["$lte"], 1e-9)
}

func TestReport_AcceptReportHandler_NotFound(t *testing.T) {
	mockRDB := &mocks.ReportDatabase{}
	re := handlers.Report{RDB: mockRDB}

	reportID := primitive.NewObjectID()
	mockRDB.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, mongo.ErrNoDocuments)
	mockRDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	req := authedRequest("PUT", "/api/v1/reports/"+reportID.Hex()+"/accept", "", ngoUser())
	req = mux.SetURLVars(req, map[string]string{"report_id": reportID.Hex()})
	rr := httptest.NewRecorder()

	re.AcceptReportHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReport_AcceptReportHandler_AlreadyAccepted(t *testing.T) {
	mockRDB := &mocks.ReportDatabase{}
	re := handlers.Report{RDB: mockRDB}

	reportID := primitive.NewObjectID()
	otherNgo := primitive.NewObjectID()
	mockRDB.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, mongo.ErrNoDocuments)
	mockRDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Report{
		ID:         reportID,
		Status:     models.ReportStatusAccepted,
		AcceptedBy: &otherNgo,
	}, nil)

	req := authedRequest("PUT", "/api/v1/reports/"+reportID.Hex()+"/accept", "", ngoUser())
	req = mux.SetURLVars(req, map[string]string{"report_id": reportID.Hex()})
	rr := httptest.NewRecorder()

	re.AcceptReportHandler(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

// Two NGOs race to accept the same pending report. The conditional update
// admits exactly one winner; the other must get a conflict, and the report
// must end up claimed by the winner only.
func TestReport_AcceptReportHandler_ConcurrentExclusivity(t *testing.T) {
	reportID := primitive.NewObjectID()
	reporterID := primitive.NewObjectID()

	var mu sync.Mutex
	claimed := false
	var winner primitive.ObjectID

	mockRDB := &mocks.ReportDatabase{}
	mockNDB := &mocks.NotificationDatabase{}
	mockNDB.On("InsertOne", mock.Anything, mock.AnythingOfType("models.Notification")).
		Return(primitive.NewObjectID(), nil).Maybe()

	mockRDB.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(func(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.Report, error) {
			mu.Lock()
			defer mu.Unlock()
			if claimed {
				return nil, mongo.ErrNoDocuments
			}
			claimed = true
			set := update.(bson.M)["$set"].(bson.M)
			winner = set["acceptedBy"].(primitive.ObjectID)
			return &models.Report{
				ID:         reportID,
				ReporterID: reporterID,
				Status:     models.ReportStatusAccepted,
				AcceptedBy: &winner,
			}, nil
		})
	mockRDB.On("FindOne", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, filter interface{}) *models.Report {
			mu.Lock()
			defer mu.Unlock()
			return &models.Report{ID: reportID, Status: models.ReportStatusAccepted, AcceptedBy: &winner}
		}, nil)

	re := handlers.Report{RDB: mockRDB, NDB: mockNDB}

	ngoA := ngoUser()
	ngoB := ngoUser()

	codes := make(chan int, 2)
	var wg sync.WaitGroup
	for _, ngo := range []*models.User{ngoA, ngoB} {
		wg.Add(1)
		go func(u *models.User) {
			defer wg.Done()
			req := authedRequest("PUT", "/api/v1/reports/"+reportID.Hex()+"/accept", "", u)
			req = mux.SetURLVars(req, map[string]string{"report_id": reportID.Hex()})
			rr := httptest.NewRecorder()
			re.AcceptReportHandler(rr, req)
			codes <- rr.Code
		}(ngo)
	}
	wg.Wait()
	close(codes)

	var got []int
	for code := range codes {
		got = append(got, code)
	}
	assert.ElementsMatch(t, []int{http.StatusOK, http.StatusConflict}, got)
	assert.True(t, winner == ngoA.ID || winner == ngoB.ID)
}

func TestReport_UpdateReportHandler_NotAcceptor(t *testing.T) {
	mockRDB := &mocks.ReportDatabase{}
	re := handlers.Report{RDB: mockRDB}

	reportID := primitive.NewObjectID()
	otherNgo := primitive.NewObjectID()
	mockRDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Report{
		ID:         reportID,
		Status:     models.ReportStatusAccepted,
		AcceptedBy: &otherNgo,
	}, nil)

	body := `{"status": "In Treatment", "description": "Fracture stabilized"}`
	req := authedRequest("PUT", "/api/v1/reports/"+reportID.Hex()+"/update", body, ngoUser())
	req = mux.SetURLVars(req, map[string]string{"report_id": reportID.Hex()})
	rr := httptest.NewRecorder()

	re.UpdateReportHandler(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	mockRDB.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReport_UpdateReportHandler_InvalidTreatmentStatus(t *testing.T) {
	mockRDB := &mocks.ReportDatabase{}
	re := handlers.Report{RDB: mockRDB}

	ngo := ngoUser()
	reportID := primitive.NewObjectID()
	mockRDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Report{
		ID:         reportID,
		Status:     models.ReportStatusAccepted,
		AcceptedBy: &ngo.ID,
	}, nil)

	body := `{"status": "Cured"}`
	req := authedRequest("PUT", "/api/v1/reports/"+reportID.Hex()+"/update", body, ngo)
	req = mux.SetURLVars(req, map[string]string{"report_id": reportID.Hex()})
	rr := httptest.NewRecorder()

	re.UpdateReportHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReport_UpdateReportHandler_OverwritesTreatmentSlot(t *testing.T) {
	mockRDB := &mocks.ReportDatabase{}
	re := handlers.Report{RDB: mockRDB}

	ngo := ngoUser()
	reportID := primitive.NewObjectID()
	mockRDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Report{
		ID:         reportID,
		Status:     models.ReportStatusAccepted,
		AcceptedBy: &ngo.ID,
		CurrentTreatment: &models.TreatmentUpdate{
			Status:      models.TreatmentStatusInTreatment,
			Description: "Initial assessment",
		},
	}, nil)

	var setTreatment models.TreatmentUpdate
	mockRDB.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.MatchedBy(func(update interface{}) bool {
		set, ok := update.(bson.M)["$set"].(bson.M)
		if !ok {
			return false
		}
		setTreatment, ok = set["currentTreatment"].(models.TreatmentUpdate)
		return ok
	}), mock.Anything).Return(func(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) *models.Report {
		return &models.Report{
			ID:               reportID,
			Status:           models.ReportStatusAccepted,
			AcceptedBy:       &ngo.ID,
			CurrentTreatment: &setTreatment,
		}
	}, nil)

	body := `{"status": "Recovery", "description": "Walking again", "veterinaryNotes": "Remove cast next week"}`
	req := authedRequest("PUT", "/api/v1/reports/"+reportID.Hex()+"/update", body, ngo)
	req = mux.SetURLVars(req, map[string]string{"report_id": reportID.Hex()})
	rr := httptest.NewRecorder()

	re.UpdateReportHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.TreatmentStatusRecovery, setTreatment.Status)
	assert.Equal(t, "Walking again", setTreatment.Description)

	var updated models.Report
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, models.TreatmentStatusRecovery, updated.CurrentTreatment.Status)
}

func TestReport_ReportByIDHandler_BadID(t *testing.T) {
	re := handlers.Report{RDB: &mocks.ReportDatabase{}}

	req := authedRequest("GET", "/api/v1/reports/not-a-hex-id", "", citizenUser())
	req = mux.SetURLVars(req, map[string]string{"report_id": "not-a-hex-id"})
	rr := httptest.NewRecorder()

	re.ReportByIDHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReport_MyReportsHandler_EmptyList(t *testing.T) {
	mockRDB := &mocks.ReportDatabase{}
	re := handlers.Report{RDB: mockRDB}

	mockRDB.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	req := authedRequest("GET", "/api/v1/reports/mine", "", citizenUser())
	rr := httptest.NewRecorder()

	re.MyReportsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestReport_CreateReportHandler_Multipart(t *testing.T) {
	mockRDB := &mocks.ReportDatabase{}
	mockUDB := &mocks.UserDatabase{}
	mockNDB := &mocks.NotificationDatabase{}
	re := handlers.Report{RDB: mockRDB, UDB: mockUDB, NDB: mockNDB}

	mockRDB.On("InsertOne", mock.Anything, mock.AnythingOfType("models.Report")).Return(primitive.NewObjectID(), nil)
	mockUDB.On("Find", mock.Anything, mock.Anything).Return([]models.User{}, nil).Maybe()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("latitude", "18.52")
	_ = mw.WriteField("longitude", "73.85")
	_ = mw.WriteField("animalType", "pet")
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/api/v1/reports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(api.ContextWithUser(req.Context(), citizenUser()))
	rr := httptest.NewRecorder()

	re.CreateReportHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestReport_ReportsHandler_NgoAllowed(t *testing.T) {
	mockRDB := &mocks.ReportDatabase{}
	re := handlers.Report{RDB: mockRDB}

	mockRDB.On("FindWithReporter", mock.Anything, bson.M{}).Return([]models.ReportWithReporter{}, nil)

	handler := api.RequireRole(http.HandlerFunc(re.ReportsHandler), models.RoleNgo, models.RoleAdmin)
	req := authedRequest("GET", "/api/v1/reports", "", ngoUser())
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestReport_ReportsHandler_CitizenForbidden(t *testing.T) {
	mockRDB := &mocks.ReportDatabase{}
	re := handlers.Report{RDB: mockRDB}

	handler := api.RequireRole(http.HandlerFunc(re.ReportsHandler), models.RoleNgo, models.RoleAdmin)
	req := authedRequest("GET", "/api/v1/reports", "", citizenUser())
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	mockRDB.AssertNotCalled(t, "FindWithReporter", mock.Anything, mock.Anything)
}

// stubUploader counts uploads without touching any backing store
type stubUploader struct {
	mu    sync.Mutex
	calls int
}

func (u *stubUploader) Upload(ctx context.Context, file io.Reader, folder string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	return "https://media.invalid/" + folder, nil
}

func TestReport_UpdateReportHandler_InvalidStatusSkipsUploads(t *testing.T) {
	mockRDB := &mocks.ReportDatabase{}
	uploads := &stubUploader{}
	re := handlers.Report{RDB: mockRDB, Uploads: uploads}

	ngo := ngoUser()
	reportID := primitive.NewObjectID()
	mockRDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Report{
		ID:         reportID,
		Status:     models.ReportStatusAccepted,
		AcceptedBy: &ngo.ID,
	}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("status", "Cured")
	fw, _ := mw.CreateFormFile("media", "wound.jpg")
	_, _ = fw.Write([]byte("not really a jpeg"))
	_ = mw.Close()

	req := httptest.NewRequest("PUT", "/api/v1/reports/"+reportID.Hex()+"/update", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(api.ContextWithUser(req.Context(), ngo))
	req = mux.SetURLVars(req, map[string]string{"report_id": reportID.Hex()})
	rr := httptest.NewRecorder()

	re.UpdateReportHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, uploads.calls)
	mockRDB.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// reportStore is an in-memory ReportDatabase used to chain handlers against
// shared state. Filters are interpreted the way mongo would: equality on the
// scalar fields the handlers query by, and range bounds on the location.
type reportStore struct {
	mu      sync.Mutex
	reports []models.Report
}

func (s *reportStore) match(rep models.Report, filter bson.M) bool {
	latRange, hasLat := filter["location.latitude"].(bson.M)
	lngRange, hasLng := filter["location.longitude"].(bson.M)
	if hasLat && hasLng {
		box := geo.Bounds{
			MinLat: latRange["$gte"].(float64),
			MaxLat: latRange["$lte"].(float64),
			MinLng: lngRange["$gte"].(float64),
			MaxLng: lngRange["$lte"].(float64),
		}
		if !box.Contains(rep.Location.Latitude, rep.Location.Longitude) {
			return false
		}
	}
	for key, want := range filter {
		switch key {
		case "_id":
			if rep.ID != want.(primitive.ObjectID) {
				return false
			}
		case "reporterId":
			if rep.ReporterID != want.(primitive.ObjectID) {
				return false
			}
		case "status":
			if rep.Status != want.(string) {
				return false
			}
		case "adminStatus":
			if rep.AdminStatus != want.(string) {
				return false
			}
		case "acceptedBy":
			if want == nil {
				if rep.AcceptedBy != nil {
					return false
				}
			} else if rep.AcceptedBy == nil || *rep.AcceptedBy != want.(primitive.ObjectID) {
				return false
			}
		}
	}
	return true
}

func (s *reportStore) FindOne(ctx context.Context, filter interface{}) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rep := range s.reports {
		if s.match(rep, filter.(bson.M)) {
			out := rep
			return &out, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *reportStore) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Report
	for _, rep := range s.reports {
		if s.match(rep, filter.(bson.M)) {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (s *reportStore) FindWithReporter(ctx context.Context, filter interface{}) ([]models.ReportWithReporter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ReportWithReporter
	for _, rep := range s.reports {
		if s.match(rep, filter.(bson.M)) {
			out = append(out, models.ReportWithReporter{Report: rep})
		}
	}
	return out, nil
}

func (s *reportStore) InsertOne(ctx context.Context, report models.Report) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return report.ID, nil
}

func (s *reportStore) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{}, nil
}

func (s *reportStore) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := update.(bson.M)["$set"].(bson.M)
	for i := range s.reports {
		if !s.match(s.reports[i], filter.(bson.M)) {
			continue
		}
		rep := &s.reports[i]
		if v, ok := set["status"].(string); ok {
			rep.Status = v
		}
		if v, ok := set["acceptedBy"].(primitive.ObjectID); ok {
			rep.AcceptedBy = &v
		}
		if v, ok := set["currentTreatment"].(models.TreatmentUpdate); ok {
			rep.CurrentTreatment = &v
		}
		if v, ok := set["updatedAt"].(primitive.DateTime); ok {
			rep.UpdatedAt = v
		}
		out := *rep
		return &out, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (s *reportStore) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reports {
		if s.match(s.reports[i], filter.(bson.M)) {
			s.reports = append(s.reports[:i], s.reports[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *reportStore) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, rep := range s.reports {
		if s.match(rep, filter.(bson.M)) {
			n++
		}
	}
	return n, nil
}

func TestReport_DispatchFlow(t *testing.T) {
	store := &reportStore{}
	mockUDB := &mocks.UserDatabase{}
	mockNDB := &mocks.NotificationDatabase{}
	mockUDB.On("Find", mock.Anything, mock.Anything).Return([]models.User{}, nil).Maybe()
	mockNDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	re := handlers.Report{RDB: store, UDB: mockUDB, NDB: mockNDB}

	// a citizen files a report
	citizen := citizenUser()
	body := `{"latitude": 12.9, "longitude": 77.6, "animalType": "stray", "injured": "yes", "address": "Jayanagar 4th Block"}`
	req := authedRequest("POST", "/api/v1/reports", body, citizen)
	rr := httptest.NewRecorder()
	re.CreateReportHandler(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.Report
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	// an NGO about 1.5 km away sees it in its nearby feed
	ngo := ngoUser()
	req = authedRequest("GET", "/api/v1/reports/nearby?lat=12.91&lng=77.61&radius=3000", "", ngo)
	rr = httptest.NewRecorder()
	re.NearbyReportsHandler(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var nearby []models.ReportWithReporter
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &nearby))
	if assert.Len(t, nearby, 1) {
		assert.Equal(t, created.ID, nearby[0].ID)
	}

	// and claims it
	req = authedRequest("PUT", "/api/v1/reports/"+created.ID.Hex()+"/accept", "", ngo)
	req = mux.SetURLVars(req, map[string]string{"report_id": created.ID.Hex()})
	rr = httptest.NewRecorder()
	re.AcceptReportHandler(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// a second NGO running the identical query no longer sees it
	rival := ngoUser()
	req = authedRequest("GET", "/api/v1/reports/nearby?lat=12.91&lng=77.61&radius=3000", "", rival)
	rr = httptest.NewRecorder()
	re.NearbyReportsHandler(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))

	// the acceptor posts a treatment update
	body = `{"status": "Recovery", "description": "Wound dressed"}`
	req = authedRequest("PUT", "/api/v1/reports/"+created.ID.Hex()+"/update", body, ngo)
	req = mux.SetURLVars(req, map[string]string{"report_id": created.ID.Hex()})
	rr = httptest.NewRecorder()
	re.UpdateReportHandler(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// a fetch shows the single current slot and the claim
	req = authedRequest("GET", "/api/v1/reports/"+created.ID.Hex(), "", citizen)
	req = mux.SetURLVars(req, map[string]string{"report_id": created.ID.Hex()})
	rr = httptest.NewRecorder()
	re.ReportByIDHandler(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var fetched models.ReportWithReporter
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fetched))
	assert.Equal(t, models.ReportStatusAccepted, fetched.Status)
	if assert.NotNil(t, fetched.AcceptedBy) {
		assert.Equal(t, ngo.ID, *fetched.AcceptedBy)
	}
	if assert.NotNil(t, fetched.CurrentTreatment) {
		assert.Equal(t, models.TreatmentStatusRecovery, fetched.CurrentTreatment.Status)
		assert.Equal(t, "Wound dressed", fetched.CurrentTreatment.Description)
	}
}
