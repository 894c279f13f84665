package users

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents an account in the system. PasswordHash and RefreshToken
// are never serialized into API responses.
type User struct {
	ID            bson.ObjectID   `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd1"`
	Username      string          `bson:"username" json:"username" example:"janedoe"`
	Email         string          `bson:"email" json:"email" example:"jane@example.com"`
	FullName      string          `bson:"full_name" json:"fullName" example:"Jane Doe"`
	AvatarURL     string          `bson:"avatar_url" json:"avatarUrl"`
	CoverImageURL string          `bson:"cover_image_url,omitempty" json:"coverImageUrl,omitempty"`
	PasswordHash  string          `bson:"password_hash" json:"-"`
	RefreshToken  string          `bson:"refresh_token,omitempty" json:"-"`
	WatchHistory  []bson.ObjectID `bson:"watch_history,omitempty" json:"-"`
	CreatedAt     time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `bson:"updated_at" json:"updatedAt"`
}

// Sanitized returns a copy safe for API responses. The bson projections
// already exclude the secret fields on most read paths; this guards the
// paths that load the full document.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	c.RefreshToken = ""
	return &c
}

// Subscription relates a subscriber to a channel (a channel is just a user
// on the receiving end of subscriptions). Read-only in this service; rows
// are produced elsewhere (and by the dev seeder).
type Subscription struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SubscriberID bson.ObjectID `bson:"subscriber_id" json:"subscriberId"`
	ChannelID    bson.ObjectID `bson:"channel_id" json:"channelId"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt"`
}

// Video is the collaborator collection resolved by the watch-history
// aggregation. Read-only in this service.
type Video struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OwnerID      bson.ObjectID `bson:"owner_id" json:"ownerId"`
	Title        string        `bson:"title" json:"title"`
	Description  string        `bson:"description,omitempty" json:"description,omitempty"`
	VideoURL     string        `bson:"video_url" json:"videoUrl"`
	ThumbnailURL string        `bson:"thumbnail_url" json:"thumbnailUrl"`
	DurationSec  float64       `bson:"duration_sec" json:"durationSec"`
	Views        int64         `bson:"views" json:"views"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updatedAt"`
}

// ChannelProfile is the projection returned by the channel aggregation.
// Only whitelisted fields ever leave the pipeline.
type ChannelProfile struct {
	ID                bson.ObjectID `bson:"_id" json:"id"`
	Username          string        `bson:"username" json:"username"`
	FullName          string        `bson:"full_name" json:"fullName"`
	Email             string        `bson:"email" json:"email"`
	AvatarURL         string        `bson:"avatar_url" json:"avatarUrl"`
	CoverImageURL     string        `bson:"cover_image_url,omitempty" json:"coverImageUrl,omitempty"`
	SubscribersCount  int64         `bson:"subscribers_count" json:"subscribersCount"`
	SubscribedToCount int64         `bson:"subscribed_to_count" json:"subscribedToCount"`
	IsSubscribed      bool          `bson:"is_subscribed" json:"isSubscribed"`
}

// VideoOwner is the trimmed owner projection inlined into each resolved
// watch-history video (always a single object, never an array).
type VideoOwner struct {
	Username  string `bson:"username" json:"username"`
	FullName  string `bson:"full_name" json:"fullName"`
	AvatarURL string `bson:"avatar_url" json:"avatarUrl"`
}

// WatchHistoryVideo is one resolved entry of the watch history.
type WatchHistoryVideo struct {
	Video `bson:",inline"`
	Owner VideoOwner `bson:"owner" json:"owner"`
}
