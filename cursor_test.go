package snowpager

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DecodeCursor(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		empty   bool
		maxID   ID
		wantErr bool
	}{
		{"empty string is the empty cursor", "", true, 0, false},
		{"plain id", "30", false, 30, false},
		{"garbage", "thirty", false, 0, true},
		{"negative", "-30", false, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DecodeCursor(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.empty, c.IsEmpty())

			maxID, set := c.MaxID()
			require.Equal(t, !tt.empty, set)
			require.Equal(t, tt.maxID, maxID)
			require.Equal(t, tt.in, c.String())
		})
	}
}

func Test_Cursor_Admits(t *testing.T) {
	var unbounded Cursor
	assert.True(t, unbounded.Admits(0))
	assert.True(t, unbounded.Admits(1<<62))

	c := NewCursor(30)
	assert.True(t, c.Admits(29))
	assert.False(t, c.Admits(30), "the cursor bound is exclusive")
	assert.False(t, c.Admits(31))

	assert.False(t, NewCursor(0).Admits(0))
	assert.False(t, NewCursor(0).IsEmpty())
}

func Test_Cursor_JSON(t *testing.T) {
	type response struct {
		PrevPage Cursor `json:"prev_page"`
	}

	raw, err := json.Marshal(response{PrevPage: NewCursor(40)})
	require.NoError(t, err)
	require.JSONEq(t, `{"prev_page":"40"}`, string(raw))

	var decoded response
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, NewCursor(40), decoded.PrevPage)

	raw, err = json.Marshal(response{})
	require.NoError(t, err)
	require.JSONEq(t, `{"prev_page":""}`, string(raw))
}

func Test_Window_HasOlder(t *testing.T) {
	var nilWindow *Window[ID]
	assert.False(t, nilWindow.HasOlder())
	assert.False(t, (&Window[ID]{}).HasOlder())
	assert.True(t, (&Window[ID]{PrevPage: NewCursor(1)}).HasOlder())
}

func Test_RawPageRequest_Decode(t *testing.T) {
	tests := []struct {
		name      string
		req       RawPageRequest
		cursor    Cursor
		limit     int
		expectErr bool
	}{
		{"first page with default limit", RawPageRequest{}, Cursor{}, DefaultLimit, false},
		{"cursor and limit", RawPageRequest{Limit: 5, MaxID: "40"}, NewCursor(40), 5, false},
		{"limit clamped", RawPageRequest{Limit: MaxLimit + 50}, Cursor{}, MaxLimit, false},
		{"malformed max id", RawPageRequest{MaxID: "forty"}, Cursor{}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor, limit, err := tt.req.Decode()
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.cursor, cursor)
			require.Equal(t, tt.limit, limit)
		})
	}
}
