package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeforeCreateAssignsID(t *testing.T) {
	m := &BaseModel{}
	require.NoError(t, m.BeforeCreate(nil))

	_, err := uuid.Parse(m.ID)
	assert.NoError(t, err)
}

func TestBeforeCreateKeepsExistingID(t *testing.T) {
	id := uuid.NewString()
	m := &BaseModel{ID: id}
	require.NoError(t, m.BeforeCreate(nil))

	assert.Equal(t, id, m.ID)
}

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "Grace Hopper", (&User{Username: "grace", FullName: "Grace Hopper"}).DisplayName())
	assert.Equal(t, "grace", (&User{Username: "grace"}).DisplayName())
	assert.Equal(t, "", (*User)(nil).DisplayName())
}

func TestDedupKeyFor(t *testing.T) {
	sender := "s1"
	postA := "p1"
	postB := "p2"

	// Follow keys ignore the related post and tolerate its absence.
	assert.Equal(t,
		DedupKeyFor("r1", &sender, NotificationTypeFollow, nil, ""),
		DedupKeyFor("r1", &sender, NotificationTypeFollow, &postA, ""))

	// Likes on different posts never collapse.
	assert.NotEqual(t,
		DedupKeyFor("r1", &sender, NotificationTypeLike, &postA, ""),
		DedupKeyFor("r1", &sender, NotificationTypeLike, &postB, ""))

	// System keys track content, so distinct announcements stay distinct.
	assert.Equal(t,
		DedupKeyFor("r1", nil, NotificationTypeSystem, nil, "maintenance"),
		DedupKeyFor("r1", nil, NotificationTypeSystem, nil, "maintenance"))
	assert.NotEqual(t,
		DedupKeyFor("r1", nil, NotificationTypeSystem, nil, "maintenance"),
		DedupKeyFor("r1", nil, NotificationTypeSystem, nil, "dark mode"))

	// Nil sender and post stay representable without NULLs.
	assert.NotEmpty(t, DedupKeyFor("r1", nil, NotificationTypeLike, nil, ""))
}

func TestIsValidNotificationType(t *testing.T) {
	for _, typ := range []string{
		NotificationTypeLike,
		NotificationTypeComment,
		NotificationTypeReply,
		NotificationTypeFollow,
		NotificationTypeMention,
		NotificationTypeShare,
		NotificationTypeSystem,
	} {
		assert.True(t, IsValidNotificationType(typ), typ)
	}

	assert.False(t, IsValidNotificationType("poke"))
	assert.False(t, IsValidNotificationType(""))
	assert.False(t, IsValidNotificationType("Like"))
}
