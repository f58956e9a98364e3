package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReview(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.registerAndLogin(t, "alice")
	ts.createTestBook(t, "book-1", "Reviewed", 10.00)

	resp := ts.api.Post("/api/v1/books/book-1/reviews",
		map[string]any{"rating": 4, "text": "Solid read."},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[ReviewResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, userID, envelope.Data.UserID)
	assert.Equal(t, 4, envelope.Data.Rating)

	resp = ts.api.Post("/api/v1/books/book-missing/reviews",
		map[string]any{"rating": 4},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCreateReview_RatingOutOfRange(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerAndLogin(t, "bob")
	ts.createTestBook(t, "book-1", "Bounds", 10.00)

	resp := ts.api.Post("/api/v1/books/book-1/reviews",
		map[string]any{"rating": 6},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetBookReviews_Average(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, _ := ts.registerAndLogin(t, "alice")
	bobToken, _ := ts.registerAndLogin(t, "bob")
	ts.createTestBook(t, "book-1", "Aggregated", 10.00)

	resp := ts.api.Post("/api/v1/books/book-1/reviews",
		map[string]any{"rating": 4},
		"Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/books/book-1/reviews",
		map[string]any{"rating": 5},
		"Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusOK, resp.Code)

	// Reading reviews needs no token.
	resp = ts.api.Get("/api/v1/books/book-1/reviews")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[BookReviewsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 4.5, envelope.Data.AverageRating)
	assert.Len(t, envelope.Data.Reviews, 2)
}

func TestUpdateReview_OwnerOnly(t *testing.T) {
	ts := setupTestServer(t)
	ownerToken, _ := ts.registerAndLogin(t, "owner")
	otherToken, _ := ts.registerAndLogin(t, "other")
	ts.createTestBook(t, "book-1", "Contested", 10.00)

	resp := ts.api.Post("/api/v1/books/book-1/reviews",
		map[string]any{"rating": 3, "text": "fine"},
		"Authorization: Bearer "+ownerToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ReviewResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	reviewID := envelope.Data.ID

	resp = ts.api.Patch("/api/v1/reviews/"+reviewID,
		map[string]any{"rating": 5},
		"Authorization: Bearer "+otherToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Patch("/api/v1/reviews/"+reviewID,
		map[string]any{"rating": 5},
		"Authorization: Bearer "+ownerToken)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 5, envelope.Data.Rating)
	assert.Equal(t, "fine", envelope.Data.Text)
}

func TestDeleteReview_OwnerOnly(t *testing.T) {
	ts := setupTestServer(t)
	ownerToken, _ := ts.registerAndLogin(t, "owner")
	otherToken, _ := ts.registerAndLogin(t, "other")
	ts.createTestBook(t, "book-1", "Contested", 10.00)

	resp := ts.api.Post("/api/v1/books/book-1/reviews",
		map[string]any{"rating": 3},
		"Authorization: Bearer "+ownerToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ReviewResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	reviewID := envelope.Data.ID

	resp = ts.api.Delete("/api/v1/reviews/"+reviewID, "Authorization: Bearer "+otherToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/v1/reviews/"+reviewID, "Authorization: Bearer "+ownerToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/reviews/"+reviewID, "Authorization: Bearer "+ownerToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
