package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/avetrov/filmweek/internal/models"
)

// RecommendationsResponse is the batch endpoint envelope. Message, when
// present, is informational (e.g. "no ratings yet") and not an error.
type RecommendationsResponse struct {
	Recommendations []models.Recommendation `json:"recommendations"`
	Message         string                  `json:"message,omitempty"`
}

// WeeklyResponse pairs the weekly pick with its streaming buckets.
// Recommendation is nil when none exists yet for the period.
type WeeklyResponse struct {
	Recommendation *models.WeeklyRecommendation `json:"recommendation"`
	StreamingData  models.StreamingData         `json:"streaming_data"`
}

type credentialsBody struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// Login exchanges username/password for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (models.TokenResponse, Result) {
	return c.postCredentials(ctx, "/api/auth/login", credentialsBody{Username: username, Password: password})
}

// Register creates an account and returns its first bearer token.
func (c *Client) Register(ctx context.Context, username, email, password string) (models.TokenResponse, Result) {
	return c.postCredentials(ctx, "/api/auth/register", credentialsBody{Username: username, Email: email, Password: password})
}

func (c *Client) postCredentials(ctx context.Context, path string, body credentialsBody) (models.TokenResponse, Result) {
	b, err := json.Marshal(body)
	if err != nil {
		return models.TokenResponse{}, Result{Kind: TransportError, Message: MsgBackendDown}
	}
	var tok models.TokenResponse
	res := decodeInto(c.Do(ctx, http.MethodPost, path, bytes.NewReader(b), "application/json"), &tok)
	return tok, res
}

// Me resolves the current token to a user profile.
func (c *Client) Me(ctx context.Context) (models.UserProfile, Result) {
	var profile models.UserProfile
	res := decodeInto(c.Do(ctx, http.MethodGet, "/api/auth/me", nil, ""), &profile)
	return profile, res
}

// Recommendations fetches the ranked batch for the authenticated user.
func (c *Client) Recommendations(ctx context.Context, topN int) (RecommendationsResponse, Result) {
	var out RecommendationsResponse
	path := "/api/recommendations?top_n=" + strconv.Itoa(topN)
	res := decodeInto(c.Do(ctx, http.MethodGet, path, nil, ""), &out)
	return out, res
}

// UserRecommendations fetches the ranked batch via the legacy per-user
// path. It coexists with Recommendations; the two endpoints are distinct
// on the service and are not unified here.
func (c *Client) UserRecommendations(ctx context.Context, userID, topN int) (RecommendationsResponse, Result) {
	var out RecommendationsResponse
	path := fmt.Sprintf("/api/recommendations/%d?top_n=%d", userID, topN)
	res := decodeInto(c.Do(ctx, http.MethodGet, path, nil, ""), &out)
	return out, res
}

// Weekly fetches the current-period pick, optionally forcing regeneration.
func (c *Client) Weekly(ctx context.Context, userID int, forceNew bool) (WeeklyResponse, Result) {
	var out WeeklyResponse
	path := fmt.Sprintf("/api/weekly-recommendation/%d?force_new=%t", userID, forceNew)
	res := decodeInto(c.Do(ctx, http.MethodGet, path, nil, ""), &out)
	return out, res
}

// WeeklyStatus fetches the gating state for the weekly pick. Callers pair
// this with Weekly as a separate request; the two resources can disagree
// and are displayed independently.
func (c *Client) WeeklyStatus(ctx context.Context, userID int) (models.WeeklyStatus, Result) {
	var envelope struct {
		Status models.WeeklyStatus `json:"status"`
	}
	path := fmt.Sprintf("/api/weekly-recommendation-status/%d", userID)
	res := decodeInto(c.Do(ctx, http.MethodGet, path, nil, ""), &envelope)
	return envelope.Status, res
}

// UploadRatings posts a Name,Rating CSV as a multipart form for the given
// target user.
func (c *Client) UploadRatings(ctx context.Context, userID int, filename string, file io.Reader) (models.UploadReport, Result) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return models.UploadReport{}, Result{Kind: TransportError, Message: MsgBackendDown}
	}
	if _, err := io.Copy(part, file); err != nil {
		return models.UploadReport{}, Result{Kind: TransportError, Message: MsgBackendDown}
	}
	if err := form.Close(); err != nil {
		return models.UploadReport{}, Result{Kind: TransportError, Message: MsgBackendDown}
	}

	path := "/api/ratings/upload?user_id=" + url.QueryEscape(strconv.Itoa(userID))
	var report models.UploadReport
	res := decodeInto(c.Do(ctx, http.MethodPost, path, &buf, form.FormDataContentType()), &report)
	return report, res
}
