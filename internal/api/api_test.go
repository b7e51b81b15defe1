package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/innovadoor/sitemeasure/internal/history"
	"github.com/innovadoor/sitemeasure/internal/model"
	"github.com/innovadoor/sitemeasure/internal/session"
	"github.com/innovadoor/sitemeasure/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testToken = "secret"

func newTestServer(t *testing.T) (*store.Store, *Client) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := httptest.NewServer(NewRouter(st, testToken, nil))
	t.Cleanup(srv.Close)

	c := NewClient(ClientConfig{
		BaseURL:    srv.URL + Prefix + "/",
		Token:      testToken,
		HTTPClient: srv.Client(),
	})
	return st, c
}

func TestClientReferenceData(t *testing.T) {
	ctx := context.Background()
	st, c := newTestServer(t)

	_, err := st.AddParty(ctx, model.Party{Name: "Acme Builders"})
	require.NoError(t, err)
	_, err = st.AddProduct(ctx, model.Product{Name: "Flush Frame", Category: session.CategoryFrame})
	require.NoError(t, err)
	_, err = st.AddProduct(ctx, model.Product{Name: "Laminate", Category: session.CategoryShutter})
	require.NoError(t, err)
	_, err = st.AddDesign(ctx, model.Design{Name: "Groove", IsActive: true})
	require.NoError(t, err)

	parties, err := c.Parties(ctx)
	require.NoError(t, err)
	require.Len(t, parties, 1)
	assert.Equal(t, "Acme Builders", parties[0].Name)

	frames, err := c.Products(ctx, session.CategoryFrame)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "Flush Frame", frames[0].Name)

	designs, err := c.Designs(ctx)
	require.NoError(t, err)
	assert.Len(t, designs, 1)

	n, err := c.NextMeasurementNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MSR-00001", n)
}

func TestClientSerialErrors(t *testing.T) {
	ctx := context.Background()
	st, c := newTestServer(t)

	_, err := c.NextSerialNumber(ctx)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Detail, "prefix")

	require.NoError(t, st.SetSerialPrefix(ctx, "A"))
	serial, err := c.NextSerialNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A00001", serial)
}

func TestRouterRequiresToken(t *testing.T) {
	_, c := newTestServer(t)
	c.token = "wrong"

	_, err := c.Parties(context.Background())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Not authenticated", apiErr.Detail)
}

func TestSubmitAndFetchMeasurement(t *testing.T) {
	ctx := context.Background()
	_, c := newTestServer(t)

	_, err := c.SubmitMeasurement(ctx, model.Measurement{Type: model.KindFrameSample, PartyID: 1})
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)

	m := model.Measurement{
		Type:      model.KindFrameSample,
		PartyID:   3,
		PartyName: "Acme Builders",
		Items:     []model.Item{{"sr_no": "A00001", "act_width": "986"}},
	}
	id, err := c.SubmitMeasurement(ctx, m)
	require.NoError(t, err)

	got, err := c.Measurement(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "MSR-00001", got.MeasurementNumber)
	assert.Equal(t, m.Items, got.Items)

	_, err = c.Measurement(ctx, id+100)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message", `{"detail": "Party not found"}`, "Party not found"},
		{"validation", `{"detail": [{"loc": ["body", "party_id"], "msg": "field required"}]}`, "party_id: field required"},
		{"plain text", "Bad Gateway\n", "Bad Gateway"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := parseError(http.StatusBadGateway, []byte(tt.body))
			if e.Detail != tt.want {
				t.Errorf("Detail = %q, want %q", e.Detail, tt.want)
			}
			if e.Status != http.StatusBadGateway {
				t.Errorf("Status = %d", e.Status)
			}
		})
	}
	assert.Equal(t, "api: 502 Bad Gateway", (&Error{Status: 502}).Error())
}

func TestClientTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	hc := srv.Client()
	hc.Timeout = 50 * time.Millisecond
	c := NewClient(ClientConfig{BaseURL: srv.URL, HTTPClient: hc})
	_, err := c.Parties(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "GET /production/parties"), err.Error())
}

// A session driven through the HTTP client against the sqlite-backed router.
func TestSessionOverHTTP(t *testing.T) {
	ctx := context.Background()
	st, c := newTestServer(t)
	require.NoError(t, st.SetSerialPrefix(ctx, "B"))
	partyID, err := st.AddParty(ctx, model.Party{Name: "Skyline Homes"})
	require.NoError(t, err)

	clock := history.NewManualClock()
	s := session.New(session.Config{
		Backend: c,
		Kind:    model.KindRegularShutter,
		Areas:   model.AreaMinusConfig{"MD": {Width: "50", Height: "30"}},
		Clock:   clock,
	})
	defer s.Close()
	require.NoError(t, s.Open(ctx))
	assert.Equal(t, "MSR-00001", s.Header().MeasurementNumber)
	assert.Empty(t, s.Notices())

	require.NoError(t, s.SelectParty(partyID))
	for field, v := range map[model.Field]string{
		model.FieldBldg:   "A",
		model.FieldFlatNo: "101",
		model.FieldArea:   "MD",
		model.FieldWidth:  "959",
		model.FieldHeight: "2280",
	} {
		_, err := s.EditCell(0, field, v)
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return s.Rows()[0].Serial.Assigned()
	}, 5*time.Second, 5*time.Millisecond)

	res, err := s.Submit(ctx)
	require.NoError(t, err)

	stored, err := st.Measurement(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	item := stored.Items[0]
	assert.Equal(t, "B00001", item["sr_no"])
	assert.Equal(t, "A_101_MD", item["location"])
	assert.Equal(t, "36", item["ro_width"])
	assert.Equal(t, "88.5", item["ro_height"])
	assert.Equal(t, "22.0149", item["act_sq_ft"])
	assert.Equal(t, session.StateClean, s.State())
}
