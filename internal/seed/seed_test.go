package seed

import (
	"context"
	"strings"
	"testing"

	"warbler/internal/credentials"
	"warbler/internal/models"
	"warbler/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersCSV = `email,username,image_url,password,bio,header_image_url,location
alice@example.com,alice,,$2b$12$Rq6oqFHvyHTrXsVkdyRRG.oAzPE4VtymfVvV1y3yA1GvhCVtQ6wUK,Hi there,,Lisbon
bob@example.com,bob,http://img/bob.png,plain-secret,,,
carol@example.com,carol,,plain-secret-2,Bird person,,Oslo
`

const messagesCSV = `text,timestamp,user_id
first from alice,2017-01-21 13:45:07.262227,1
bob says hi,2017-02-01 08:00:00,2
no timestamp,,3
`

const followsCSV = `user_being_followed_id,user_following_id
1,2
1,3
2,1
1,2
`

func csvSource() CSVSource {
	return CSVSource{
		Users:    strings.NewReader(usersCSV),
		Messages: strings.NewReader(messagesCSV),
		Follows:  strings.NewReader(followsCSV),
	}
}

func TestLoadCSV(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	summary, err := LoadCSV(context.Background(), db, csvSource(), CSVOptions{
		HeaderImageURL: models.DefaultHeaderImageURL,
	})
	require.NoError(t, err)
	assert.Equal(t, &Summary{Users: 3, Messages: 3, Follows: 3}, summary, "duplicate edge is skipped")

	var users []models.User
	require.NoError(t, db.Order("id").Find(&users).Error)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "alice", users[0].UsernameKey)
	assert.Equal(t, "Lisbon", users[0].Location)
	assert.Equal(t, models.DefaultImageURL, users[0].ImageURL)
	assert.Equal(t, "http://img/bob.png", users[1].ImageURL)
	for _, u := range users {
		assert.Equal(t, models.DefaultHeaderImageURL, u.HeaderImageURL)
	}

	assert.True(t, strings.HasPrefix(users[0].Password, "$2b$"), "exported digest kept as is")
	assert.True(t, credentials.Verify("plain-secret", users[1].Password), "plaintext is hashed")

	var messages []models.Message
	require.NoError(t, db.Order("id").Find(&messages).Error)
	require.Len(t, messages, 3)
	assert.Equal(t, users[0].ID, messages[0].UserID)
	assert.Equal(t, 2017, messages[0].Timestamp.Year())
	assert.False(t, messages[2].Timestamp.IsZero())

	var follows int64
	db.Model(&models.Follow{}).Count(&follows)
	assert.Equal(t, int64(3), follows)
}

func TestLoadCSVClean(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	old := testutil.CreateUser(t, db, "olduser")
	testutil.CreateMessage(t, db, old.ID, "old")

	_, err := LoadCSV(context.Background(), db, csvSource(), CSVOptions{Clean: true})
	require.NoError(t, err)

	var count int64
	db.Model(&models.User{}).Where("username_key = ?", "olduser").Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Message{}).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestLoadCSVRollsBackOnBadReference(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	src := csvSource()
	src.Follows = strings.NewReader("user_being_followed_id,user_following_id\n1,9\n")

	_, err := LoadCSV(context.Background(), db, src, CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not reference a user")

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Zero(t, count, "users are rolled back with the failed follows")
}

func TestLoadCSVMissingColumn(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	src := csvSource()
	src.Messages = strings.NewReader("body,user_id\nhello,1\n")

	_, err := LoadCSV(context.Background(), db, src, CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "text"`)
}

func TestParseTimestamp(t *testing.T) {
	for _, raw := range []string{
		"2017-01-21 13:45:07.262227",
		"2017-01-21 13:45:07",
		"2017-01-21T13:45:07Z",
		"2017-01-21",
	} {
		ts, err := parseTimestamp(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, 21, ts.Day(), raw)
	}

	_, err := parseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestFactoryBuildUser(t *testing.T) {
	f := NewFactory(nil, 42)

	u, err := f.BuildUser(func(u *models.User) { u.Bio = "custom" })
	require.NoError(t, err)
	assert.Equal(t, "custom", u.Bio)
	assert.True(t, credentials.Verify(DefaultPassword, u.Password))

	other, err := f.BuildUser()
	require.NoError(t, err)
	assert.NotEqual(t, u.Username, other.Username)
	assert.Equal(t, u.Password, other.Password, "digest is computed once")

	_, err = f.BuildUser(func(u *models.User) { u.Username = "!" })
	assert.Error(t, err)
}

func TestFactoryBuildMessage(t *testing.T) {
	f := NewFactory(nil, 7)
	user := &models.User{ID: 3}

	for range 50 {
		msg := f.BuildMessage(user, 10)
		assert.Equal(t, uint(3), msg.UserID)
		assert.LessOrEqual(t, len([]rune(msg.Text)), models.MaxMessageLength)
		assert.NotEmpty(t, msg.Text)
		assert.False(t, msg.Timestamp.IsZero())
	}
}

func TestSeedSocialGraph(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	f := NewFactory(db, 1)

	summary, err := f.SeedSocialGraph(context.Background(), Options{
		Users:           6,
		MessagesPerUser: 3,
		FollowsPerUser:  2,
		LikesPerUser:    4,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, summary.Users)
	assert.Equal(t, 18, summary.Messages)
	assert.Equal(t, 12, summary.Follows)
	assert.Equal(t, 24, summary.Likes)

	var selfFollows int64
	db.Model(&models.Follow{}).Where("user_following_id = user_being_followed_id").Count(&selfFollows)
	assert.Zero(t, selfFollows)

	var selfLikes int64
	db.Table("likes").
		Joins("JOIN messages ON messages.id = likes.message_id").
		Where("messages.user_id = likes.user_id").
		Count(&selfLikes)
	assert.Zero(t, selfLikes)
}

func TestSeedSocialGraphEmpty(t *testing.T) {
	f := NewFactory(nil, 1)
	summary, err := f.SeedSocialGraph(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, &Summary{}, summary)
}

func TestClearAll(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")
	m := testutil.CreateMessage(t, db, a.ID, "hi")
	testutil.Follow(t, db, b.ID, a.ID)
	testutil.Like(t, db, b.ID, m.ID)

	require.NoError(t, ClearAll(db))

	for _, model := range []any{&models.User{}, &models.Message{}, &models.Follow{}, &models.Like{}} {
		var n int64
		db.Model(model).Count(&n)
		assert.Zero(t, n)
	}
}
