package handlers

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/streamtube/backend/internal/models"
	"github.com/streamtube/backend/internal/repositories"
	"github.com/streamtube/backend/pkg/media"
)

// In-memory repository fakes backing the handler tests. They implement the
// same conditional semantics as the Mongo implementations where the tests
// depend on them (toggle, $addToSet, $pull).

type fakeUserRepository struct {
	users        map[primitive.ObjectID]*models.User
	watchHistory map[primitive.ObjectID][]primitive.ObjectID
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		users:        make(map[primitive.ObjectID]*models.User),
		watchHistory: make(map[primitive.ObjectID][]primitive.ObjectID),
	}
}

func (f *fakeUserRepository) CreateUser(_ context.Context, user *models.User) error {
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepository) GetUserByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	for _, user := range f.users {
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepository) UpdateUserFields(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if fullName, ok := fields["fullName"].(string); ok {
		user.FullName = fullName
	}
	if email, ok := fields["email"].(string); ok {
		for otherID, other := range f.users {
			if otherID != id && other.Email == email {
				return nil, repositories.ErrDuplicate
			}
		}
		user.Email = email
	}
	if password, ok := fields["password"].(string); ok {
		user.Password = password
	}
	if avatar, ok := fields["avatar"].(models.MediaAsset); ok {
		user.Avatar = avatar
	}
	if cover, ok := fields["coverImage"].(models.MediaAsset); ok {
		user.CoverImage = cover
	}
	return user, nil
}

func (f *fakeUserRepository) SetRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	user, ok := f.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = token
	return nil
}

func (f *fakeUserRepository) ClearRefreshToken(_ context.Context, id primitive.ObjectID) error {
	if user, ok := f.users[id]; ok {
		user.RefreshToken = ""
	}
	return nil
}

func (f *fakeUserRepository) AddToWatchHistory(_ context.Context, userID, videoID primitive.ObjectID) error {
	for _, id := range f.watchHistory[userID] {
		if id == videoID {
			return nil
		}
	}
	f.watchHistory[userID] = append(f.watchHistory[userID], videoID)
	return nil
}

func (f *fakeUserRepository) GetChannelProfile(_ context.Context, username string, _ primitive.ObjectID) (bson.M, error) {
	for _, user := range f.users {
		if user.Username == username {
			return bson.M{"username": user.Username}, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepository) GetWatchHistory(_ context.Context, userID primitive.ObjectID) ([]bson.M, error) {
	history := make([]bson.M, 0, len(f.watchHistory[userID]))
	for _, id := range f.watchHistory[userID] {
		history = append(history, bson.M{"_id": id})
	}
	return history, nil
}

type fakeVideoRepository struct {
	videos   map[primitive.ObjectID]*models.Video
	lastList repositories.ListVideosOptions
}

func newFakeVideoRepository() *fakeVideoRepository {
	return &fakeVideoRepository{videos: make(map[primitive.ObjectID]*models.Video)}
}

func (f *fakeVideoRepository) CreateVideo(_ context.Context, video *models.Video) error {
	video.ID = primitive.NewObjectID()
	f.videos[video.ID] = video
	return nil
}

func (f *fakeVideoRepository) GetVideoByID(_ context.Context, id primitive.ObjectID) (*models.Video, error) {
	video, ok := f.videos[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return video, nil
}

func (f *fakeVideoRepository) GetVideoWithOwner(_ context.Context, id primitive.ObjectID) (bson.M, error) {
	video, ok := f.videos[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return bson.M{"_id": video.ID, "title": video.Title, "views": video.Views}, nil
}

func (f *fakeVideoRepository) ListVideos(_ context.Context, opts repositories.ListVideosOptions) (*repositories.Page, error) {
	f.lastList = opts
	return &repositories.Page{Docs: []bson.M{}}, nil
}

func (f *fakeVideoRepository) UpdateVideoFields(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.Video, error) {
	video, ok := f.videos[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if title, ok := fields["title"].(string); ok {
		video.Title = title
	}
	if description, ok := fields["description"].(string); ok {
		video.Description = description
	}
	if thumbnail, ok := fields["thumbnail"].(models.MediaAsset); ok {
		video.Thumbnail = thumbnail
	}
	if published, ok := fields["isPublished"].(bool); ok {
		video.IsPublished = published
	}
	return video, nil
}

func (f *fakeVideoRepository) DeleteVideo(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.videos, id)
	return nil
}

func (f *fakeVideoRepository) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	video, ok := f.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	return nil
}

type fakeCommentRepository struct {
	comments       map[primitive.ObjectID]*models.Comment
	deletedByVideo []primitive.ObjectID
}

func newFakeCommentRepository() *fakeCommentRepository {
	return &fakeCommentRepository{comments: make(map[primitive.ObjectID]*models.Comment)}
}

func (f *fakeCommentRepository) CreateComment(_ context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	f.comments[comment.ID] = comment
	return nil
}

func (f *fakeCommentRepository) GetCommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	comment, ok := f.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return comment, nil
}

func (f *fakeCommentRepository) UpdateCommentContent(_ context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	comment, ok := f.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	comment.Content = content
	return comment, nil
}

func (f *fakeCommentRepository) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeCommentRepository) DeleteCommentsByVideo(_ context.Context, videoID primitive.ObjectID) error {
	f.deletedByVideo = append(f.deletedByVideo, videoID)
	for id, comment := range f.comments {
		if comment.Video == videoID {
			delete(f.comments, id)
		}
	}
	return nil
}

func (f *fakeCommentRepository) ListCommentsByVideo(_ context.Context, _, _ primitive.ObjectID, _, _ int64) (*repositories.Page, error) {
	return &repositories.Page{Docs: []bson.M{}}, nil
}

type fakeLikeRepository struct {
	likes          map[string]bool
	deletedByVideo []primitive.ObjectID
	deletedOwn     []primitive.ObjectID
}

func newFakeLikeRepository() *fakeLikeRepository {
	return &fakeLikeRepository{likes: make(map[string]bool)}
}

func likeKey(target models.LikeTarget, targetID, actor primitive.ObjectID) string {
	return fmt.Sprintf("%s/%s/%s", target, targetID.Hex(), actor.Hex())
}

func (f *fakeLikeRepository) Toggle(_ context.Context, target models.LikeTarget, targetID, actor primitive.ObjectID) (bool, error) {
	key := likeKey(target, targetID, actor)
	if f.likes[key] {
		delete(f.likes, key)
		return false, nil
	}
	f.likes[key] = true
	return true, nil
}

func (f *fakeLikeRepository) DeleteLikesByVideo(_ context.Context, videoID primitive.ObjectID) error {
	f.deletedByVideo = append(f.deletedByVideo, videoID)
	return nil
}

func (f *fakeLikeRepository) DeleteOwnLikeOnComment(_ context.Context, commentID, _ primitive.ObjectID) error {
	f.deletedOwn = append(f.deletedOwn, commentID)
	return nil
}

func (f *fakeLikeRepository) ListLikedVideos(_ context.Context, _ primitive.ObjectID) ([]bson.M, error) {
	return []bson.M{}, nil
}

type fakeTweetRepository struct {
	tweets map[primitive.ObjectID]*models.Tweet
}

func newFakeTweetRepository() *fakeTweetRepository {
	return &fakeTweetRepository{tweets: make(map[primitive.ObjectID]*models.Tweet)}
}

func (f *fakeTweetRepository) CreateTweet(_ context.Context, tweet *models.Tweet) error {
	tweet.ID = primitive.NewObjectID()
	f.tweets[tweet.ID] = tweet
	return nil
}

func (f *fakeTweetRepository) GetTweetByID(_ context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	tweet, ok := f.tweets[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return tweet, nil
}

func (f *fakeTweetRepository) UpdateTweetContent(_ context.Context, id primitive.ObjectID, content string) (*models.Tweet, error) {
	tweet, ok := f.tweets[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	tweet.Content = content
	return tweet, nil
}

func (f *fakeTweetRepository) DeleteTweet(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.tweets, id)
	return nil
}

func (f *fakeTweetRepository) ListTweetsByOwner(_ context.Context, _ primitive.ObjectID) ([]bson.M, error) {
	return []bson.M{}, nil
}

type fakePlaylistRepository struct {
	playlists map[primitive.ObjectID]*models.Playlist
}

func newFakePlaylistRepository() *fakePlaylistRepository {
	return &fakePlaylistRepository{playlists: make(map[primitive.ObjectID]*models.Playlist)}
}

func (f *fakePlaylistRepository) CreatePlaylist(_ context.Context, playlist *models.Playlist) error {
	playlist.ID = primitive.NewObjectID()
	if playlist.Videos == nil {
		playlist.Videos = []primitive.ObjectID{}
	}
	f.playlists[playlist.ID] = playlist
	return nil
}

func (f *fakePlaylistRepository) GetPlaylistByID(_ context.Context, id primitive.ObjectID) (*models.Playlist, error) {
	playlist, ok := f.playlists[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return playlist, nil
}

func (f *fakePlaylistRepository) GetPlaylistDetailed(_ context.Context, id primitive.ObjectID) (bson.M, error) {
	playlist, ok := f.playlists[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return bson.M{"_id": playlist.ID, "name": playlist.Name}, nil
}

func (f *fakePlaylistRepository) ListPlaylistsByOwner(_ context.Context, _ primitive.ObjectID) ([]bson.M, error) {
	return []bson.M{}, nil
}

func (f *fakePlaylistRepository) AddVideo(_ context.Context, playlistID, videoID primitive.ObjectID) (*models.Playlist, error) {
	playlist, ok := f.playlists[playlistID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	for _, id := range playlist.Videos {
		if id == videoID {
			return playlist, nil
		}
	}
	playlist.Videos = append(playlist.Videos, videoID)
	return playlist, nil
}

func (f *fakePlaylistRepository) RemoveVideo(_ context.Context, playlistID, videoID primitive.ObjectID) (*models.Playlist, error) {
	playlist, ok := f.playlists[playlistID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	videos := playlist.Videos[:0]
	for _, id := range playlist.Videos {
		if id != videoID {
			videos = append(videos, id)
		}
	}
	playlist.Videos = videos
	return playlist, nil
}

func (f *fakePlaylistRepository) UpdatePlaylist(_ context.Context, id primitive.ObjectID, name, description string) (*models.Playlist, error) {
	playlist, ok := f.playlists[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	playlist.Name = name
	playlist.Description = description
	return playlist, nil
}

func (f *fakePlaylistRepository) DeletePlaylist(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.playlists, id)
	return nil
}

type fakeSubscriptionRepository struct {
	subscriptions map[string]bool
}

func newFakeSubscriptionRepository() *fakeSubscriptionRepository {
	return &fakeSubscriptionRepository{subscriptions: make(map[string]bool)}
}

func (f *fakeSubscriptionRepository) Toggle(_ context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	key := subscriber.Hex() + "/" + channel.Hex()
	if f.subscriptions[key] {
		delete(f.subscriptions, key)
		return false, nil
	}
	f.subscriptions[key] = true
	return true, nil
}

func (f *fakeSubscriptionRepository) GetChannelSubscribers(_ context.Context, channel primitive.ObjectID) (bson.M, error) {
	count := 0
	for key := range f.subscriptions {
		if key[len(key)-len(channel.Hex()):] == channel.Hex() {
			count++
		}
	}
	return bson.M{"subscribersCount": count}, nil
}

func (f *fakeSubscriptionRepository) GetSubscribedChannels(_ context.Context, subscriber primitive.ObjectID) (bson.M, error) {
	count := 0
	for key := range f.subscriptions {
		if key[:len(subscriber.Hex())] == subscriber.Hex() {
			count++
		}
	}
	return bson.M{"channelsCount": count}, nil
}

type deletedAsset struct {
	publicID     string
	resourceType string
}

type fakeMediaService struct {
	uploads int
	deleted []deletedAsset
}

func (f *fakeMediaService) Upload(_ context.Context, localPath string) (*media.UploadResult, error) {
	f.uploads++
	return &media.UploadResult{
		URL:      "https://media.example/" + localPath,
		PublicID: "asset-" + fmt.Sprint(f.uploads),
	}, nil
}

func (f *fakeMediaService) Delete(_ context.Context, publicID, resourceType string) error {
	f.deleted = append(f.deleted, deletedAsset{publicID: publicID, resourceType: resourceType})
	return nil
}
