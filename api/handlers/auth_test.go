package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/aniresq/aniresq-api/api/handlers"
	"github.com/aniresq/aniresq-api/databases/mocks"
	"github.com/aniresq/aniresq-api/models"
)

func TestAuth_SignupHandler_PasswordTooShort(t *testing.T) {
	a := handlers.Auth{UDB: &mocks.UserDatabase{}}

	body := `{"name": "Ravi", "email": "ravi@example.com", "password": "short", "mobileno": "9876543210", "role": "citizen"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/signup", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.SignupHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuth_SignupHandler_InvalidMobileNo(t *testing.T) {
	a := handlers.Auth{UDB: &mocks.UserDatabase{}}

	body := `{"name": "Ravi", "email": "ravi@example.com", "password": "supersecret", "mobileno": "98765", "role": "citizen"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/signup", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.SignupHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuth_SignupHandler_InvalidRole(t *testing.T) {
	a := handlers.Auth{UDB: &mocks.UserDatabase{}}

	body := `{"name": "Ravi", "email": "ravi@example.com", "password": "supersecret", "mobileno": "9876543210", "role": "superuser"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/signup", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.SignupHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuth_SignupHandler_DuplicateEmail(t *testing.T) {
	mockUDB := &mocks.UserDatabase{}
	a := handlers.Auth{UDB: mockUDB}

	mockUDB.On("FindOne", mock.Anything, bson.M{"email": "ravi@example.com"}).
		Return(&models.User{ID: primitive.NewObjectID()}, nil)

	body := `{"name": "Ravi", "email": "Ravi@Example.com", "password": "supersecret", "mobileno": "9876543210", "role": "citizen"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/signup", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.SignupHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockUDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestAuth_SignupHandler_Success(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	mockUDB := &mocks.UserDatabase{}
	a := handlers.Auth{UDB: mockUDB}

	mockUDB.On("FindOne", mock.Anything, bson.M{"email": "meera@example.com"}).
		Return(nil, mongo.ErrNoDocuments)
	mockUDB.On("InsertOne", mock.Anything, mock.AnythingOfType("models.User")).
		Return(primitive.NewObjectID(), nil)

	body := `{"name": "Meera", "email": "meera@example.com", "password": "supersecret", "mobileno": "9876543210", "role": "ngo", "latitude": 18.52, "longitude": 73.85}`
	req := httptest.NewRequest("POST", "/api/v1/auth/signup", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.SignupHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "meera@example.com", resp.User.Email)
	assert.Equal(t, models.RoleNgo, resp.User.Role)
}

func TestAuth_LoginHandler_WrongPassword(t *testing.T) {
	mockUDB := &mocks.UserDatabase{}
	a := handlers.Auth{UDB: mockUDB}

	hashed, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), 10)
	mockUDB.On("FindOne", mock.Anything, bson.M{"email": "meera@example.com"}).
		Return(&models.User{ID: primitive.NewObjectID(), Email: "meera@example.com", Password: string(hashed)}, nil)

	body := `{"email": "meera@example.com", "password": "wrong-password"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.LoginHandler(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_LoginHandler_UnknownEmail(t *testing.T) {
	mockUDB := &mocks.UserDatabase{}
	a := handlers.Auth{UDB: mockUDB}

	mockUDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	body := `{"email": "ghost@example.com", "password": "whatever123"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.LoginHandler(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_LoginHandler_BlacklistedUser(t *testing.T) {
	mockUDB := &mocks.UserDatabase{}
	a := handlers.Auth{UDB: mockUDB}

	hashed, _ := bcrypt.GenerateFromPassword([]byte("supersecret"), 10)
	mockUDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.User{
		ID:            primitive.NewObjectID(),
		Email:         "banned@example.com",
		Password:      string(hashed),
		IsBlacklisted: true,
	}, nil)

	body := `{"email": "banned@example.com", "password": "supersecret"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.LoginHandler(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

type fakeMailer struct {
	sent  int
	fail  bool
	to    string
	html  string
	plain string
}

func (f *fakeMailer) Send(toEmail, toName, subject, htmlContent, plainText string) error {
	if f.fail {
		return assert.AnError
	}
	f.sent++
	f.to = toEmail
	f.html = htmlContent
	f.plain = plainText
	return nil
}

func TestAuth_ForgotPasswordHandler_SendsOTP(t *testing.T) {
	mockUDB := &mocks.UserDatabase{}
	mailer := &fakeMailer{}
	a := handlers.Auth{UDB: mockUDB, Mail: mailer}

	userID := primitive.NewObjectID()
	mockUDB.On("FindOne", mock.Anything, bson.M{"email": "meera@example.com"}).
		Return(&models.User{ID: userID, Name: "Meera", Email: "meera@example.com"}, nil)
	mockUDB.On("UpdateOne", mock.Anything, bson.M{"_id": userID}, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	body := `{"email": "meera@example.com"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/forgot-password", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.ForgotPasswordHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, mailer.sent)
	assert.Equal(t, "meera@example.com", mailer.to)
}

func TestAuth_ForgotPasswordHandler_MailFailure(t *testing.T) {
	mockUDB := &mocks.UserDatabase{}
	a := handlers.Auth{UDB: mockUDB, Mail: &fakeMailer{fail: true}}

	userID := primitive.NewObjectID()
	mockUDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.User{ID: userID, Email: "meera@example.com"}, nil)
	mockUDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	body := `{"email": "meera@example.com"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/forgot-password", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.ForgotPasswordHandler(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestAuth_VerifyOTPHandler_Expired(t *testing.T) {
	mockUDB := &mocks.UserDatabase{}
	a := handlers.Auth{UDB: mockUDB}

	expired := primitive.NewDateTimeFromTime(time.Now().Add(-time.Minute))
	mockUDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.User{
		ID:        primitive.NewObjectID(),
		Email:     "meera@example.com",
		OTP:       "123456",
		OTPExpiry: &expired,
	}, nil)

	body := `{"email": "meera@example.com", "otp": "123456", "newPassword": "newsupersecret"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/verify-otp", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.VerifyOTPHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockUDB.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuth_VerifyOTPHandler_Success(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	mockUDB := &mocks.UserDatabase{}
	a := handlers.Auth{UDB: mockUDB}

	userID := primitive.NewObjectID()
	future := primitive.NewDateTimeFromTime(time.Now().Add(10 * time.Minute))
	mockUDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.User{
		ID:        userID,
		Email:     "meera@example.com",
		OTP:       "123456",
		OTPExpiry: &future,
	}, nil)
	mockUDB.On("UpdateOne", mock.Anything, bson.M{"_id": userID}, mock.MatchedBy(func(update interface{}) bool {
		u, ok := update.(bson.M)
		if !ok {
			return false
		}
		_, hasUnset := u["$unset"]
		return hasUnset
	})).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	body := `{"email": "meera@example.com", "otp": "123456", "newPassword": "newsupersecret"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/verify-otp", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.VerifyOTPHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
}

func TestAuth_NgosHandler_ExcludesBlacklisted(t *testing.T) {
	mockUDB := &mocks.UserDatabase{}
	a := handlers.Auth{UDB: mockUDB}

	mockUDB.On("Find", mock.Anything, bson.M{"role": models.RoleNgo, "isBlacklisted": false}).
		Return([]models.User{{Name: "Paws & Claws Rescue", Role: models.RoleNgo}}, nil)

	req := authedRequest("GET", "/api/v1/ngos", "", citizenUser())
	rr := httptest.NewRecorder()

	a.NgosHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var ngos []models.User
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ngos))
	assert.Len(t, ngos, 1)
}
