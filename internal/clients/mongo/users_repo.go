package mongo

import (
	"context"
	"errors"
	"time"

	"vid-pulse/internal/logger"
	"vid-pulse/internal/services/users"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UsersRepo implements the users.UsersRepo interface for MongoDB
type UsersRepo struct {
	collection *mongo.Collection
}

// sanitizedProjection excludes credential fields from read paths that feed
// API responses directly.
var sanitizedProjection = bson.M{
	"password_hash": 0,
	"refresh_token": 0,
}

// NewUsersRepo creates a new users repository and ensures the unique
// identity indexes exist.
func NewUsersRepo(parentCtx context.Context, db *mongo.Database) (*UsersRepo, error) {
	collection := db.Collection("users")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	ctx, cancel := context.WithTimeout(parentCtx, OpTimeout)
	defer cancel()

	for _, indexModel := range indexes {
		if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				logger.L().Debug("index already exists, continuing", "collection", "users")
				continue
			}
			return nil, err
		}
	}

	return &UsersRepo{collection: collection}, nil
}

func repoCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return WithRepoTimeout(parent, OpTimeout)
}

// translateNotFound maps the driver ErrNoDocuments to the domain sentinel.
func translateNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return users.ErrUserNotFound
	}
	return err
}

// Create inserts a new user document
func (r *UsersRepo) Create(ctx context.Context, user *users.User) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return users.ErrDuplicate
		}
		return err
	}

	return nil
}

// FindByID loads the full user document, credentials included.
func (r *UsersRepo) FindByID(ctx context.Context, id bson.ObjectID) (*users.User, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var user users.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, translateNotFound(err)
	}

	return &user, nil
}

// FindSanitizedByID loads a user with password hash and refresh token
// excluded from the projection.
func (r *UsersRepo) FindSanitizedByID(ctx context.Context, id bson.ObjectID) (*users.User, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	opts := options.FindOne().SetProjection(sanitizedProjection)

	var user users.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user)
	if err != nil {
		return nil, translateNotFound(err)
	}

	return &user, nil
}

// FindByUsernameOrEmail matches either lower-cased identifier. Empty
// arguments are dropped from the filter; both empty never matches.
func (r *UsersRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*users.User, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var or bson.A
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, users.ErrUserNotFound
	}

	var user users.User
	err := r.collection.FindOne(ctx, bson.M{"$or": or}).Decode(&user)
	if err != nil {
		return nil, translateNotFound(err)
	}

	return &user, nil
}

// SetRefreshToken unconditionally overwrites the stored refresh token.
func (r *UsersRepo) SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"refresh_token": token,
		"updated_at":    time.Now().UTC(),
	}}

	result, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return users.ErrUserNotFound
	}

	return nil
}

// RotateRefreshToken swaps the stored refresh token for next only when the
// stored value equals presented. The filter carries the presented token so
// two concurrent refreshes with the same token cannot both match.
func (r *UsersRepo) RotateRefreshToken(ctx context.Context, id bson.ObjectID, presented, next string) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"refresh_token": next,
		"updated_at":    time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, rotateRefreshTokenFilter(id, presented), update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return users.ErrRefreshTokenMismatch
	}

	return nil
}

// rotateRefreshTokenFilter matches the user document only while the stored
// refresh token still equals the presented one, making the swap in
// RotateRefreshToken a compare-and-set.
func rotateRefreshTokenFilter(id bson.ObjectID, presented string) bson.M {
	return bson.M{"_id": id, "refresh_token": presented}
}

// ClearRefreshToken unsets the stored refresh token. Clearing an already
// cleared token matches the document and is a no-op, keeping logout
// idempotent.
func (r *UsersRepo) ClearRefreshToken(ctx context.Context, id bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	update := bson.M{
		"$unset": bson.M{"refresh_token": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return users.ErrUserNotFound
	}

	return nil
}

// UpdatePasswordHash stores a new bcrypt hash.
func (r *UsersRepo) UpdatePasswordHash(ctx context.Context, id bson.ObjectID, hash string) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}}

	result, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return users.ErrUserNotFound
	}

	return nil
}

// findAndUpdate applies a $set patch and returns the sanitized post-update
// document.
func (r *UsersRepo) findAndUpdate(ctx context.Context, id bson.ObjectID, set bson.M) (*users.User, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	set["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(sanitizedProjection)

	var user users.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, users.ErrDuplicate
		}
		return nil, translateNotFound(err)
	}

	return &user, nil
}

// UpdateDetails updates fullName and email and returns the updated record.
func (r *UsersRepo) UpdateDetails(ctx context.Context, id bson.ObjectID, fullName, email string) (*users.User, error) {
	return r.findAndUpdate(ctx, id, bson.M{"full_name": fullName, "email": email})
}

// UpdateAvatarURL stores a new avatar URL and returns the updated record.
func (r *UsersRepo) UpdateAvatarURL(ctx context.Context, id bson.ObjectID, url string) (*users.User, error) {
	return r.findAndUpdate(ctx, id, bson.M{"avatar_url": url})
}

// UpdateCoverImageURL stores a new cover image URL and returns the updated record.
func (r *UsersRepo) UpdateCoverImageURL(ctx context.Context, id bson.ObjectID, url string) (*users.User, error) {
	return r.findAndUpdate(ctx, id, bson.M{"cover_image_url": url})
}

// ChannelProfile runs the channel aggregation: match the user by username,
// join subscriptions twice (once with this user as the channel, once as the
// subscriber), derive the two counts plus the viewer's membership, and
// project the whitelisted field set. Credential fields never pass the
// projection.
func (r *UsersRepo) ChannelProfile(ctx context.Context, username string, viewerID bson.ObjectID) (*users.ChannelProfile, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, channelProfilePipeline(username, viewerID))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []users.ChannelProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, users.ErrChannelNotFound
	}

	return &profiles[0], nil
}

// channelProfilePipeline builds the channel aggregation: match by username,
// join subscriptions twice (user as channel, user as subscriber), derive the
// counts plus the viewer's membership, project the whitelist.
func channelProfilePipeline(username string, viewerID bson.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": username}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "subscriptions",
			"localField":   "_id",
			"foreignField": "channel_id",
			"as":           "subscribers",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "subscriptions",
			"localField":   "_id",
			"foreignField": "subscriber_id",
			"as":           "subscribed_to",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"subscribers_count":   bson.M{"$size": "$subscribers"},
			"subscribed_to_count": bson.M{"$size": "$subscribed_to"},
			"is_subscribed":       bson.M{"$in": bson.A{viewerID, "$subscribers.subscriber_id"}},
		}}},
		{{Key: "$project", Value: bson.M{
			"username":            1,
			"full_name":           1,
			"email":               1,
			"avatar_url":          1,
			"cover_image_url":     1,
			"subscribers_count":   1,
			"subscribed_to_count": 1,
			"is_subscribed":       1,
		}}},
	}
}

// watchHistoryRow is the shape produced by the watch-history aggregation:
// the stored id sequence plus the joined video documents.
type watchHistoryRow struct {
	WatchHistory []bson.ObjectID           `bson:"watch_history"`
	Videos       []users.WatchHistoryVideo `bson:"videos"`
}

// watchHistoryPipeline joins the stored video-id sequence against the videos
// collection, with a nested users lookup trimmed to the owner summary. The
// owner join yields a single-element array, collapsed with $first.
func watchHistoryPipeline(id bson.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "videos",
			"localField":   "watch_history",
			"foreignField": "_id",
			"as":           "videos",
			"pipeline": bson.A{
				bson.M{"$lookup": bson.M{
					"from":         "users",
					"localField":   "owner_id",
					"foreignField": "_id",
					"as":           "owner",
					"pipeline": bson.A{
						bson.M{"$project": bson.M{
							"username":   1,
							"full_name":  1,
							"avatar_url": 1,
						}},
					},
				}},
				bson.M{"$addFields": bson.M{"owner": bson.M{"$first": "$owner"}}},
			},
		}}},
		{{Key: "$project", Value: bson.M{
			"watch_history": 1,
			"videos":        1,
		}}},
	}
}

// WatchHistory resolves the user's ordered video-id sequence against the
// videos collection, inlining a trimmed owner projection per video. $lookup
// returns matches in unspecified order, so the rows are re-ordered to the
// stored sequence before returning.
func (r *UsersRepo) WatchHistory(ctx context.Context, id bson.ObjectID) ([]users.WatchHistoryVideo, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, watchHistoryPipeline(id))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []watchHistoryRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, users.ErrUserNotFound
	}

	row := rows[0]
	byID := make(map[bson.ObjectID]users.WatchHistoryVideo, len(row.Videos))
	for _, v := range row.Videos {
		byID[v.ID] = v
	}

	ordered := make([]users.WatchHistoryVideo, 0, len(row.WatchHistory))
	for _, videoID := range row.WatchHistory {
		if v, ok := byID[videoID]; ok {
			ordered = append(ordered, v)
		}
	}

	return ordered, nil
}
