package google

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/bobmcallan/dayplan/internal/clients"
	"github.com/bobmcallan/dayplan/internal/models"
)

func testToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: "test-access-token",
		Expiry:      time.Now().Add(time.Hour),
	}
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func b64(s string) string {
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte(s))
}

func TestRecentMessages(t *testing.T) {
	var listQuery string
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch {
		case r.URL.Path == "/gmail/v1/users/me/messages":
			listQuery = r.URL.Query().Get("q")
			w.Write([]byte(`{"messages": [{"id": "m1"}, {"id": "m2"}]}`))
		case r.URL.Path == "/gmail/v1/users/me/messages/m1":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id": "m1",
				"payload": map[string]interface{}{
					"headers": []map[string]string{
						{"name": "From", "value": "carol@example.com"},
						{"name": "Subject", "value": "Standup moved"},
					},
					"parts": []map[string]interface{}{
						{
							"mimeType": "text/plain",
							"body":     map[string]string{"data": b64("Now at 10am.")},
						},
					},
				},
			})
		case r.URL.Path == "/gmail/v1/users/me/messages/m2":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id": "m2",
				"payload": map[string]interface{}{
					"body": map[string]string{"data": b64("Single-part body.")},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithClock(fixedClock))
	messages, err := client.RecentMessages(t.Context(), testToken())
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-access-token", gotAuth)

	// The list query bounds the window to the last 48 hours
	wantAfter := fixedClock().Add(-InboxWindow).Unix()
	assert.Equal(t, "after:"+strconv.FormatInt(wantAfter, 10), listQuery)

	require.Len(t, messages, 2)
	assert.Equal(t, "carol@example.com", messages[0].From)
	assert.Equal(t, "Standup moved", messages[0].Subject)
	assert.Equal(t, "Now at 10am.", messages[0].Body)

	// Headerless message falls back to placeholders
	assert.Equal(t, "Unknown", messages[1].From)
	assert.Equal(t, "No Subject", messages[1].Subject)
	assert.Equal(t, "Single-part body.", messages[1].Body)
}

func TestRecentMessagesEmptyInbox(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"messages": []}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	messages, err := client.RecentMessages(t.Context(), testToken())
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRecentMessagesExpiredTokenError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"code": 401}}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.RecentMessages(t.Context(), testToken())
	require.Error(t, err)

	typed, ok := clients.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, typed.Status)
}

func TestSend(t *testing.T) {
	var gotRaw string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gmail/v1/users/me/messages/send", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req struct {
			Raw string `json:"raw"`
		}
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &req))
		gotRaw = req.Raw

		w.Write([]byte(`{"id": "sent-1"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	id, err := client.Send(t.Context(), testToken(), "carol@example.com", "Re: Standup", "Works for me.")
	require.NoError(t, err)
	assert.Equal(t, "sent-1", id)

	decoded, err := base64.URLEncoding.DecodeString(gotRaw)
	require.NoError(t, err)
	raw := string(decoded)
	assert.True(t, strings.HasPrefix(raw, "To: carol@example.com\r\n"))
	assert.Contains(t, raw, "Subject: Re: Standup\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nWorks for me."))
}

func TestInsertTask(t *testing.T) {
	var gotEvent map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendar/v3/calendars/primary/events", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotEvent))
		w.Write([]byte(`{"id": "ev-1"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	err := client.InsertTask(t.Context(), testToken(), &models.CalendarTask{
		Title:       "Dentist",
		Description: "Checkup",
		Date:        "2025-07-01",
		StartTime:   "09:00",
		EndTime:     "09:30",
	})
	require.NoError(t, err)

	assert.Equal(t, "Dentist", gotEvent["summary"])
	start := gotEvent["start"].(map[string]interface{})
	assert.Equal(t, "2025-07-01T09:00:00", start["dateTime"])
	assert.Equal(t, EventTimezone, start["timeZone"])
	end := gotEvent["end"].(map[string]interface{})
	assert.Equal(t, "2025-07-01T09:30:00", end["dateTime"])
}

func TestInsertTaskUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	err := client.InsertTask(t.Context(), testToken(), &models.CalendarTask{
		Title: "Dentist", Date: "2025-07-01", StartTime: "09:00", EndTime: "09:30",
	})
	require.Error(t, err)

	typed, ok := clients.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, typed.Status)
}
