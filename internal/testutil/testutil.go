package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"cherryblossom/internal/platform/crypto"
	"cherryblossom/internal/results"

	"github.com/golang-jwt/jwt/v5"
)

// SampleRecord builds a placed US record with consistent pace.
func SampleRecord(year, place int, gender string, age int, state string, finishSeconds int) results.Record {
	r := results.Record{
		Year:          year,
		Name:          "Runner " + gender,
		Gender:        gender,
		State:         state,
		Country:       "USA",
		IsUS:          true,
		IsLocal:       state == "DC" || state == "MD" || state == "VA",
		OverallPlace:  &place,
		FinishSeconds: finishSeconds,
		PaceSeconds:   finishSeconds / 10,
	}
	if age > 0 {
		r.Age = &age
		r.AgeGroup = results.AgeGroupFor(age)
	}
	return r
}

// GenerateAdminToken mints a valid operator token for testing.
func GenerateAdminToken(secret string) string {
	token, _, _ := crypto.GenerateToken(secret, "test-operator", crypto.RoleAdmin, time.Hour)
	return token
}

// GenerateExpiredToken mints an operator token that expired an hour ago.
func GenerateExpiredToken(secret string) string {
	token, _, _ := crypto.GenerateToken(secret, "test-operator", crypto.RoleAdmin, -time.Hour)
	return token
}

// GenerateTokenWithRole signs a token with an arbitrary role.
func GenerateTokenWithRole(secret, role string) string {
	c := crypto.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "cherryblossom",
			Subject:   "test-operator",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	return token
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// NewRequestWithAuth creates a new HTTP request with a bearer token
func NewRequestWithAuth(method, path string, body interface{}, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// RecordResponse is a decoded HTTP response
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}

// ErrorCode returns error.code of a JSON error envelope, or "".
func (r RecordResponse) ErrorCode() string {
	if e, ok := r.Body["error"].(map[string]interface{}); ok {
		code, _ := e["code"].(string)
		return code
	}
	return ""
}
