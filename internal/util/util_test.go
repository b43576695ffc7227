package util

import (
	"brainer_backend/internal/model"
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestIsSlug(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"python-basics", true},
		{"data_eng", true},
		{"c1", true},
		{"", false},
		{"Python", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--dash", false},
		{"with space", false},
	}
	for _, tt := range tests {
		if got := IsSlug(tt.in); got != tt.want {
			t.Errorf("IsSlug(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ingénierie des données", "ingenierie-des-donnees"},
		{"  Les bases de Python !  ", "les-bases-de-python"},
		{"SQL & NoSQL", "sql-nosql"},
		{"Déjà vu", "deja-vu"},
	}
	for _, tt := range tests {
		got := Slugify(tt.in)
		if got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if !IsSlug(got) {
			t.Errorf("IsSlug(Slugify(%q)) = false", tt.in)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"fode_0101.png", "fode_0101.png", false},
		{"../../etc/passwd", "passwd", false},
		{`C:\Users\me\photo 1.jpg`, "photo_1.jpg", false},
		{".hidden.png", "hidden.png", false},
		{"", "", true},
		{"...", "", true},
	}
	for _, tt := range tests {
		got, err := SanitizeFilename(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrValidation) {
				t.Errorf("SanitizeFilename(%q) error = %v, want ErrValidation", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("SanitizeFilename(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    uint
		wantErr bool
	}{
		{"42", 42, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseID("chapterId", tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestValidateMimeType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

	got, err := ValidateMimeType(bytes.NewReader(png), []string{MimeImage})
	if err != nil {
		t.Fatalf("ValidateMimeType(png) error = %v", err)
	}
	if got != "image/png" {
		t.Errorf("ValidateMimeType(png) = %q, want image/png", got)
	}

	if _, err := ValidateMimeType(bytes.NewReader([]byte("just some text")), []string{MimeImage}); err == nil {
		t.Error("ValidateMimeType(text) error = nil, want rejection")
	}
}

func TestHandleErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantFields int
	}{
		{"not found", NotFoundError("course", "python"), http.StatusNotFound, 0},
		{"conflict", ConflictError("course", "Course with slug 'python' already exists"), http.StatusConflict, 0},
		{"validation", ValidationError("invalid", FieldError{Field: "slug", Message: "bad"}), http.StatusUnprocessableEntity, 1},
		{"unauthorized", UnauthorizedError("Not authenticated"), http.StatusUnauthorized, 0},
		{"forbidden", ForbiddenError("nope"), http.StatusForbidden, 0},
		{"unknown", errors.New("db exploded"), http.StatusInternalServerError, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if resp.Code != tt.wantStatus {
				t.Errorf("code = %d, want %d", resp.Code, tt.wantStatus)
			}
			if len(resp.Errors) != tt.wantFields {
				t.Errorf("errors = %v, want %d entries", resp.Errors, tt.wantFields)
			}
			if tt.wantStatus == http.StatusInternalServerError && resp.Message != "Internal server error" {
				t.Errorf("message = %q, want the internal error to stay hidden", resp.Message)
			}
			if tt.wantStatus == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Errorf("WWW-Authenticate = %q, want Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFoundError("course", "python-basics")
	if got, want := err.Error(), "Course not found: python-basics"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestBindingErrorFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	type body struct {
		Title string `json:"title" binding:"required"`
		Slug  string `json:"slug" binding:"required,slug"`
	}

	tests := []struct {
		name      string
		payload   string
		wantField string
	}{
		{"missing title", `{"slug":"ok"}`, "title"},
		{"bad slug", `{"title":"t","slug":"Not OK"}`, "slug"},
		{"wrong type", `{"title":1,"slug":"ok"}`, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.payload))
			c.Request.Header.Set("Content-Type", "application/json")

			var b body
			err := c.ShouldBindJSON(&b)
			if err == nil {
				t.Fatal("ShouldBindJSON() error = nil, want failure")
			}
			BindingError(c, err)

			if w.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", w.Code)
			}
			var resp Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if len(resp.Errors) == 0 || resp.Errors[0].Field != tt.wantField {
				t.Errorf("errors = %+v, want field %q", resp.Errors, tt.wantField)
			}
		})
	}
}

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{ID: 7, Email: "ada@example.com"}
	secret := "0123456789abcdef0123456789abcdef"

	token, err := GenerateJWT(user, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}
	claims, err := ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("ParseJWT() error = %v", err)
	}
	if claims.UserID != 7 || claims.Email != "ada@example.com" {
		t.Errorf("claims = %+v, want user 7", claims)
	}

	if _, err := ParseJWT(token, "another-secret-another-secret-xx"); err == nil {
		t.Error("ParseJWT(wrong secret) error = nil, want failure")
	}

	expired, err := GenerateJWT(user, secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT(expired) error = %v", err)
	}
	if _, err := ParseJWT(expired, secret); err == nil {
		t.Error("ParseJWT(expired) error = nil, want failure")
	}
}
