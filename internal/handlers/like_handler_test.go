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

func newLikeFixture() (*LikeHandler, *fakeLikeRepository, *fakeVideoRepository, *fakeCommentRepository, *fakeTweetRepository) {
	likes := newFakeLikeRepository()
	videos := newFakeVideoRepository()
	comments := newFakeCommentRepository()
	tweets := newFakeTweetRepository()
	return NewLikeHandler(likes, videos, comments, tweets), likes, videos, comments, tweets
}

func TestToggleVideoLikeAlternates(t *testing.T) {
	handler, _, videos, _, _ := newLikeFixture()

	video := &models.Video{Title: "first", Owner: primitive.NewObjectID()}
	require.NoError(t, videos.CreateVideo(context.Background(), video))
	user := &models.User{ID: primitive.NewObjectID()}

	for i, want := range []bool{true, false, true} {
		c, rec := newTestContext(t, http.MethodPost, nil, "videoId", video.ID.Hex())
		actAs(c, user)

		require.NoError(t, handler.ToggleVideoLike(c))
		assert.Equal(t, want, dataMap(t, rec)["isLiked"], "toggle %d", i+1)
	}
}

func TestToggleVideoLikeIsPerUser(t *testing.T) {
	handler, _, videos, _, _ := newLikeFixture()

	video := &models.Video{Title: "first", Owner: primitive.NewObjectID()}
	require.NoError(t, videos.CreateVideo(context.Background(), video))

	for _, user := range []*models.User{
		{ID: primitive.NewObjectID()},
		{ID: primitive.NewObjectID()},
	} {
		c, rec := newTestContext(t, http.MethodPost, nil, "videoId", video.ID.Hex())
		actAs(c, user)

		require.NoError(t, handler.ToggleVideoLike(c))
		assert.Equal(t, true, dataMap(t, rec)["isLiked"])
	}
}

func TestToggleVideoLikeUnknownVideo(t *testing.T) {
	handler, _, _, _, _ := newLikeFixture()

	c, _ := newTestContext(t, http.MethodPost, nil, "videoId", primitive.NewObjectID().Hex())
	actAs(c, &models.User{ID: primitive.NewObjectID()})

	requireHTTPError(t, handler.ToggleVideoLike(c), http.StatusNotFound)
}

func TestToggleVideoLikeInvalidID(t *testing.T) {
	handler, _, _, _, _ := newLikeFixture()

	c, _ := newTestContext(t, http.MethodPost, nil, "videoId", "not-an-id")
	actAs(c, &models.User{ID: primitive.NewObjectID()})

	requireHTTPError(t, handler.ToggleVideoLike(c), http.StatusBadRequest)
}

func TestToggleCommentLike(t *testing.T) {
	handler, _, _, comments, _ := newLikeFixture()

	comment := &models.Comment{Content: "nice", Video: primitive.NewObjectID(), Owner: primitive.NewObjectID()}
	require.NoError(t, comments.CreateComment(context.Background(), comment))

	c, rec := newTestContext(t, http.MethodPost, nil, "commentId", comment.ID.Hex())
	actAs(c, &models.User{ID: primitive.NewObjectID()})

	require.NoError(t, handler.ToggleCommentLike(c))
	assert.Equal(t, true, dataMap(t, rec)["isLiked"])
}

func TestToggleTweetLikeUnknownTweet(t *testing.T) {
	handler, _, _, _, _ := newLikeFixture()

	c, _ := newTestContext(t, http.MethodPost, nil, "tweetId", primitive.NewObjectID().Hex())
	actAs(c, &models.User{ID: primitive.NewObjectID()})

	requireHTTPError(t, handler.ToggleTweetLike(c), http.StatusNotFound)
}

func TestTargetsAreLikedIndependently(t *testing.T) {
	handler, likes, videos, comments, _ := newLikeFixture()

	video := &models.Video{Title: "first", Owner: primitive.NewObjectID()}
	require.NoError(t, videos.CreateVideo(context.Background(), video))
	comment := &models.Comment{Content: "nice", Video: video.ID, Owner: primitive.NewObjectID()}
	require.NoError(t, comments.CreateComment(context.Background(), comment))
	user := &models.User{ID: primitive.NewObjectID()}

	c, _ := newTestContext(t, http.MethodPost, nil, "videoId", video.ID.Hex())
	actAs(c, user)
	require.NoError(t, handler.ToggleVideoLike(c))

	c, _ = newTestContext(t, http.MethodPost, nil, "commentId", comment.ID.Hex())
	actAs(c, user)
	require.NoError(t, handler.ToggleCommentLike(c))

	assert.Len(t, likes.likes, 2)
}
