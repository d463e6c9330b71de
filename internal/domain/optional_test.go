package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalJSON(t *testing.T) {
	t.Run("absent, null and empty are distinct", func(t *testing.T) {
		var patch EventPatch
		require.NoError(t, json.Unmarshal([]byte(`{"name":"","location":null}`), &patch))

		name, ok := patch.Name.Get()
		assert.True(t, ok)
		assert.Equal(t, "", name)
		assert.False(t, patch.Location.IsSet())
		assert.False(t, patch.Description.IsSet())
		assert.False(t, patch.Categories.IsSet())
	})

	t.Run("empty category list is present", func(t *testing.T) {
		var patch EventPatch
		require.NoError(t, json.Unmarshal([]byte(`{"categories":[]}`), &patch))
		names, ok := patch.Categories.Get()
		assert.True(t, ok)
		assert.Empty(t, names)
	})

	t.Run("type mismatch fails", func(t *testing.T) {
		var patch EventPatch
		assert.Error(t, json.Unmarshal([]byte(`{"name":12}`), &patch))
	})

	t.Run("marshal", func(t *testing.T) {
		data, err := json.Marshal(struct {
			A Optional[string] `json:"a"`
			B Optional[int]    `json:"b"`
		}{A: Some("x")})
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":"x","b":null}`, string(data))
	})

	t.Run("or else", func(t *testing.T) {
		assert.Equal(t, "fallback", None[string]().OrElse("fallback"))
		assert.Equal(t, "", Some("").OrElse("fallback"))
	})
}

func TestPatchChanges(t *testing.T) {
	date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	start := TimeOfDay{Hour: 18, Minute: 30}

	t.Run("event", func(t *testing.T) {
		patch := EventPatch{
			Name:       Some("Jazz"),
			Date:       Some(date),
			StartTime:  Some(start),
			EventType:  Some(EventPrivate),
			Categories: Some([]string{"Music"}),
		}
		assert.Equal(t, map[string]interface{}{
			"name":       "Jazz",
			"date":       date,
			"start_time": start,
			"evt_type":   "private",
		}, patch.Changes())
		assert.Empty(t, EventPatch{}.Changes())
	})

	t.Run("user", func(t *testing.T) {
		patch := UserPatch{FirstName: Some(""), IsActive: Some(false)}
		assert.Equal(t, map[string]interface{}{"first_name": "", "is_active": false}, patch.Changes())
	})

	t.Run("category", func(t *testing.T) {
		assert.Equal(t, map[string]interface{}{"name": "Art"}, CategoryPatch{Name: Some("Art")}.Changes())
	})
}

func TestEnums(t *testing.T) {
	assert.True(t, EventPublic.Valid())
	assert.False(t, EventType("secret").Valid())
	assert.True(t, MissingCreate.Valid())
	assert.False(t, MissingCategoryPolicy("drop").Valid())

	u := User{}
	assert.False(t, u.HasPassword())
	hash := "$2a$10$abc"
	u.Password = &hash
	assert.True(t, u.HasPassword())
}
