package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/streamtube/backend/internal/models"
)

func TestCreateTweet(t *testing.T) {
	tweets := newFakeTweetRepository()
	handler := NewTweetHandler(tweets)
	user := &models.User{ID: primitive.NewObjectID()}

	c, rec := newTestContext(t, http.MethodPost, jsonBody(t, models.TweetRequest{Content: "hello"}))
	actAs(c, user)

	require.NoError(t, handler.CreateTweet(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "hello", dataMap(t, rec)["content"])
	require.Len(t, tweets.tweets, 1)
	for _, tweet := range tweets.tweets {
		assert.Equal(t, user.ID, tweet.Owner)
	}
}

func TestCreateTweetEmptyContent(t *testing.T) {
	handler := NewTweetHandler(newFakeTweetRepository())

	c, _ := newTestContext(t, http.MethodPost, jsonBody(t, models.TweetRequest{}))
	actAs(c, &models.User{ID: primitive.NewObjectID()})

	requireHTTPError(t, handler.CreateTweet(c), http.StatusBadRequest)
}

func TestUpdateTweetReturnsUpdatedContent(t *testing.T) {
	tweets := newFakeTweetRepository()
	handler := NewTweetHandler(tweets)

	owner := &models.User{ID: primitive.NewObjectID()}
	tweet := &models.Tweet{Content: "first", Owner: owner.ID}
	require.NoError(t, tweets.CreateTweet(context.Background(), tweet))

	c, rec := newTestContext(t, http.MethodPatch, jsonBody(t, models.TweetRequest{Content: "second"}), "tweetId", tweet.ID.Hex())
	actAs(c, owner)

	require.NoError(t, handler.UpdateTweet(c))
	assert.Equal(t, "second", dataMap(t, rec)["content"])
}

func TestUpdateTweetNonOwnerForbidden(t *testing.T) {
	tweets := newFakeTweetRepository()
	handler := NewTweetHandler(tweets)

	tweet := &models.Tweet{Content: "first", Owner: primitive.NewObjectID()}
	require.NoError(t, tweets.CreateTweet(context.Background(), tweet))

	c, _ := newTestContext(t, http.MethodPatch, jsonBody(t, models.TweetRequest{Content: "second"}), "tweetId", tweet.ID.Hex())
	actAs(c, &models.User{ID: primitive.NewObjectID()})

	requireHTTPError(t, handler.UpdateTweet(c), http.StatusForbidden)
	assert.Equal(t, "first", tweet.Content)
}

func TestDeleteTweetNonOwnerForbidden(t *testing.T) {
	tweets := newFakeTweetRepository()
	handler := NewTweetHandler(tweets)

	tweet := &models.Tweet{Content: "first", Owner: primitive.NewObjectID()}
	require.NoError(t, tweets.CreateTweet(context.Background(), tweet))

	c, _ := newTestContext(t, http.MethodDelete, nil, "tweetId", tweet.ID.Hex())
	actAs(c, &models.User{ID: primitive.NewObjectID()})

	requireHTTPError(t, handler.DeleteTweet(c), http.StatusForbidden)
	assert.Len(t, tweets.tweets, 1)
}

func TestDeleteTweetByOwner(t *testing.T) {
	tweets := newFakeTweetRepository()
	handler := NewTweetHandler(tweets)

	owner := &models.User{ID: primitive.NewObjectID()}
	tweet := &models.Tweet{Content: "first", Owner: owner.ID}
	require.NoError(t, tweets.CreateTweet(context.Background(), tweet))

	c, _ := newTestContext(t, http.MethodDelete, nil, "tweetId", tweet.ID.Hex())
	actAs(c, owner)

	require.NoError(t, handler.DeleteTweet(c))
	assert.Empty(t, tweets.tweets)
}
