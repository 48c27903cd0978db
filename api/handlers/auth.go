package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/aniresq/aniresq-api/api"
	"github.com/aniresq/aniresq-api/config"
	"github.com/aniresq/aniresq-api/databases"
	"github.com/aniresq/aniresq-api/models"
	templates "github.com/aniresq/aniresq-api/templates/html"
)

var mobileNoRegex = regexp.MustCompile(`^\d{10}$`)

// Auth handles signup, login and password recovery
type Auth struct {
	UDB     databases.UserDatabase
	Uploads Uploader
	Mail    Mailer
}

type signupRequest struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	MobileNo  string   `json:"mobileno"`
	Role      string   `json:"role"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	RegiID    string   `json:"regiId"`
	AboutUs   string   `json:"aboutUs"`
	Mission   string   `json:"mission"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (s *signupRequest) validate() error {
	if s.Name == "" || s.Email == "" || s.Password == "" || s.MobileNo == "" {
		return errors.New("name, email, password and mobileno are required")
	}
	if len(s.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if !mobileNoRegex.MatchString(s.MobileNo) {
		return errors.New("mobileno must be exactly 10 digits")
	}
	if s.Role == "" {
		return errors.New("role is required")
	}
	if !models.ValidRole(s.Role) {
		return fmt.Errorf("role must be citizen, ngo or admin, got %q", s.Role)
	}
	return nil
}

// SignupHandler registers a new user and returns a signed token
func (a Auth) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	var imageURL string

	if isMultipart(r) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			config.ErrorStatus("failed to parse multipart form", http.StatusBadRequest, w, err)
			return
		}
		req.Name = r.FormValue("name")
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")
		req.MobileNo = r.FormValue("mobileno")
		req.Role = r.FormValue("role")
		req.RegiID = r.FormValue("regiId")
		req.AboutUs = r.FormValue("aboutUs")
		req.Mission = r.FormValue("mission")
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
			url, err := a.Uploads.Upload(r.Context(), file, uploadFolderUsers)
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

	if err := req.validate(); err != nil {
		config.ErrorStatus("invalid signup request", http.StatusBadRequest, w, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var address *models.Location
	if req.Latitude != nil && req.Longitude != nil {
		address = &models.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
		if err := address.Validate(); err != nil {
			config.ErrorStatus("invalid address location", http.StatusBadRequest, w, err)
			return
		}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := a.UDB.FindOne(ctx, bson.M{"email": req.Email}); err == nil {
		config.ErrorStatus("email already registered", http.StatusBadRequest, w, errors.New("duplicate email"))
		return
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		config.ErrorStatus("failed to check email", http.StatusInternalServerError, w, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashed),
		MobileNo:  req.MobileNo,
		Role:      req.Role,
		Address:   address,
		Image:     imageURL,
		RegiID:    req.RegiID,
		AboutUs:   req.AboutUs,
		Mission:   req.Mission,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := a.UDB.InsertOne(ctx, user); err != nil {
		config.ErrorStatus("failed to create user", http.StatusInternalServerError, w, err)
		return
	}

	token, err := api.SignToken(&user, 24*time.Hour)
	if err != nil {
		config.ErrorStatus("failed to sign token", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(authResponse{Token: token, User: user})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// LoginHandler verifies credentials and returns a signed token
func (a Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		config.ErrorStatus("email and password are required", http.StatusBadRequest, w, errors.New("missing credentials"))
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	user, err := a.UDB.FindOne(ctx, bson.M{"email": req.Email})
	if err != nil {
		config.ErrorStatus("Invalid email or password", http.StatusUnauthorized, w, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		config.ErrorStatus("Invalid email or password", http.StatusUnauthorized, w, err)
		return
	}
	if user.IsBlacklisted {
		config.ErrorStatus("account is blacklisted", http.StatusForbidden, w, errors.New("blacklisted user"))
		return
	}

	token, err := api.SignToken(user, 24*time.Hour)
	if err != nil {
		config.ErrorStatus("failed to sign token", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(authResponse{Token: token, User: *user})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func otpExpiryMinutes() int {
	minutes, err := strconv.Atoi(os.Getenv("OTP_EXPIRY_MINUTES"))
	if err != nil || minutes <= 0 {
		return 10
	}
	return minutes
}

// ForgotPasswordHandler generates a one time passcode and emails it to the
// user. Responds 200 even when nothing was sent for unknown emails, to avoid
// leaking which addresses are registered.
func (a Auth) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		config.ErrorStatus("email is required", http.StatusBadRequest, w, errors.New("missing email"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	user, err := a.UDB.FindOne(ctx, bson.M{"email": req.Email})
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		config.ErrorStatus("failed to look up user", http.StatusInternalServerError, w, err)
		return
	}

	if user != nil {
		otp := fmt.Sprintf("%06d", rand.Intn(1000000))
		minutes := otpExpiryMinutes()
		expiry := primitive.NewDateTimeFromTime(time.Now().Add(time.Duration(minutes) * time.Minute))

		if _, err := a.UDB.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
			"otp":       otp,
			"otpExpiry": expiry,
		}}); err != nil {
			config.ErrorStatus("failed to store OTP", http.StatusInternalServerError, w, err)
			return
		}

		htmlBody := templates.RenderOTPEmail(user.Name, otp, minutes)
		plainBody := fmt.Sprintf("Your AniResQ password reset code is %s. It expires in %d minutes.", otp, minutes)
		if err := a.Mail.Send(user.Email, user.Name, "Your AniResQ password reset code", htmlBody, plainBody); err != nil {
			config.ErrorStatus("failed to send OTP email", http.StatusBadGateway, w, err)
			return
		}
	}

	b, _ := json.Marshal(map[string]string{"message": "If the email is registered, an OTP has been sent"})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// VerifyOTPHandler checks a passcode, sets the new password, clears the OTP
// so it cannot be replayed, and returns a short lived token so the client can
// log the user straight in
func (a Auth) VerifyOTPHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		config.ErrorStatus("email, otp and newPassword are required", http.StatusBadRequest, w, errors.New("missing fields"))
		return
	}
	if len(req.NewPassword) < 8 {
		config.ErrorStatus("password must be at least 8 characters", http.StatusBadRequest, w, errors.New("password too short"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	user, err := a.UDB.FindOne(ctx, bson.M{"email": req.Email})
	if err != nil {
		config.ErrorStatus("invalid or expired OTP", http.StatusBadRequest, w, err)
		return
	}
	if user.OTP == "" || user.OTP != req.OTP {
		config.ErrorStatus("invalid or expired OTP", http.StatusBadRequest, w, errors.New("OTP mismatch"))
		return
	}
	if user.OTPExpiry == nil || user.OTPExpiry.Time().Before(time.Now()) {
		config.ErrorStatus("invalid or expired OTP", http.StatusBadRequest, w, errors.New("OTP expired"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 10)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}
	if _, err := a.UDB.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set":   bson.M{"password": string(hashed), "updatedAt": primitive.NewDateTimeFromTime(time.Now())},
		"$unset": bson.M{"otp": "", "otpExpiry": ""},
	}); err != nil {
		config.ErrorStatus("failed to update password", http.StatusInternalServerError, w, err)
		return
	}

	token, err := api.SignToken(user, time.Hour)
	if err != nil {
		config.ErrorStatus("failed to sign token", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(map[string]string{
		"message": "Password updated successfully",
		"token":   token,
	})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MeHandler returns the authenticated user's profile
func (a Auth) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())

	b, err := json.Marshal(user)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateProfileHandler updates the caller's own mutable profile fields
func (a Auth) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())

	var req struct {
		Name      string   `json:"name"`
		MobileNo  string   `json:"mobileno"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		AboutUs   string   `json:"aboutUs"`
		Mission   string   `json:"mission"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.MobileNo != "" {
		if !mobileNoRegex.MatchString(req.MobileNo) {
			config.ErrorStatus("mobileno must be exactly 10 digits", http.StatusBadRequest, w, errors.New("invalid mobileno"))
			return
		}
		set["mobileno"] = req.MobileNo
	}
	if req.Latitude != nil && req.Longitude != nil {
		address := models.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
		if err := address.Validate(); err != nil {
			config.ErrorStatus("invalid address location", http.StatusBadRequest, w, err)
			return
		}
		set["address"] = address
	}
	if req.AboutUs != "" {
		set["aboutUs"] = req.AboutUs
	}
	if req.Mission != "" {
		set["mission"] = req.Mission
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if _, err := a.UDB.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to update profile", http.StatusInternalServerError, w, err)
		return
	}

	updated, err := a.UDB.FindOne(ctx, bson.M{"_id": user.ID})
	if err != nil {
		config.ErrorStatus("failed to get updated profile", http.StatusInternalServerError, w, err)
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

// NgosHandler returns the public NGO directory
func (a Auth) NgosHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	ngos, err := a.UDB.Find(ctx, bson.M{"role": models.RoleNgo, "isBlacklisted": false})
	if err != nil {
		config.ErrorStatus("failed to get NGOs", http.StatusNotFound, w, err)
		return
	}
	if len(ngos) == 0 {
		ngos = []models.User{}
	}
	b, err := json.Marshal(ngos)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
