package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cristianoliveira/flightdeck/internal/api"
	"github.com/cristianoliveira/flightdeck/internal/colors"
	"github.com/cristianoliveira/flightdeck/internal/domain"
	"github.com/cristianoliveira/flightdeck/internal/livequery"
	"github.com/cristianoliveira/flightdeck/internal/session"
	"github.com/cristianoliveira/flightdeck/internal/workflow"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs c with args, capturing command and colors output.
func execute(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetArgs(args)
	colors.SetOutput(&out, &out)
	t.Cleanup(func() { colors.SetOutput(nil, nil) })
	err := c.Execute()
	return out.String(), err
}

func sampleView(f livequery.Filter) livequery.View {
	return livequery.View{
		Filter: f,
		Result: domain.ListResult{
			Flights: []domain.Flight{
				{FlightNumber: "PK-101", Origin: "Karachi", Destination: "Dubai", Status: domain.StatusDelayed, Airline: "PIA", FlightType: "Commercial"},
			},
			Pagination: domain.Pagination{TotalFlights: 1, TotalPages: 1, CurrentPage: 1},
		},
	}
}

type fakeClient struct {
	filters []livequery.Filter
	listErr error

	views    int
	watchErr error

	setStatus struct{ flight, status string }
	statusRes workflow.State
	statusErr error

	creds    []api.Credentials
	loginErr error

	signedOut bool
	session   session.Session

	tuiSignedOut bool
}

func (f *fakeClient) ListFlights(_ context.Context, filter livequery.Filter) (livequery.View, error) {
	f.filters = append(f.filters, filter)
	if f.listErr != nil {
		return livequery.View{}, f.listErr
	}
	return sampleView(filter), nil
}

func (f *fakeClient) Watch(_ context.Context, filter livequery.Filter, onView func(livequery.View)) error {
	f.filters = append(f.filters, filter)
	for i := 0; i < f.views; i++ {
		onView(sampleView(filter))
	}
	return f.watchErr
}

func (f *fakeClient) SetStatus(_ context.Context, flight, status string) (workflow.State, error) {
	f.setStatus.flight, f.setStatus.status = flight, status
	return f.statusRes, f.statusErr
}

func (f *fakeClient) Login(_ context.Context, c api.Credentials) (api.LoginResult, error) {
	f.creds = append(f.creds, c)
	if f.loginErr != nil {
		return api.LoginResult{}, f.loginErr
	}
	return api.LoginResult{Token: "tok", Role: domain.RoleAdmin}, nil
}

func (f *fakeClient) Register(_ context.Context, c api.Credentials) (api.RegisterResult, error) {
	f.creds = append(f.creds, c)
	if f.loginErr != nil {
		return api.RegisterResult{}, f.loginErr
	}
	return api.RegisterResult{User: api.RegisteredUser{Email: c.Email, Role: "user"}, Message: "User registered"}, nil
}

func (f *fakeClient) SignOut() error {
	f.signedOut = true
	return nil
}

func (f *fakeClient) Session() (session.Session, error) { return f.session, nil }

func (f *fakeClient) RunTUI(context.Context) (bool, error) { return f.tuiSignedOut, nil }

func (f *fakeClient) Version() string { return "1.2.3+abc" }

type fakePrompter struct {
	line, secret string
	asked        []string
}

func (p *fakePrompter) ReadLine(label string) (string, error) {
	p.asked = append(p.asked, label)
	return p.line, nil
}

func (p *fakePrompter) ReadSecret(label string) (string, error) {
	p.asked = append(p.asked, label)
	return p.secret, nil
}

func TestListCmdTable(t *testing.T) {
	client := &fakeClient{}

	out, err := execute(t, NewListCmd(client), "--status", "delayed", "--airline", "pia", "--search", "PK", "--limit", "25", "--page", "2")
	require.NoError(t, err)

	require.Len(t, client.filters, 1)
	f := client.filters[0]
	assert.Equal(t, domain.StatusDelayed, f.Status)
	assert.Equal(t, "PIA", f.Airline)
	assert.Equal(t, "PK", f.Search)
	assert.Equal(t, 25, f.Limit)
	assert.Equal(t, 2, f.Page)
	assert.Contains(t, out, "PK-101")
	assert.Contains(t, out, "page 1/1, 1 flights")
}

func TestListCmdDefaults(t *testing.T) {
	client := &fakeClient{}

	_, err := execute(t, NewListCmd(client))
	require.NoError(t, err)

	assert.Equal(t, livequery.Filter{Page: 1, Limit: 10}, client.filters[0])
}

func TestListCmdJSON(t *testing.T) {
	client := &fakeClient{}

	out, err := execute(t, NewListCmd(client), "--format", "json")
	require.NoError(t, err)

	var got domain.ListResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Flights, 1)
	assert.Equal(t, "PK-101", got.Flights[0].FlightNumber)
}

func TestListCmdRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"format", []string{"--format", "yaml"}, `unknown format "yaml"`},
		{"limit", []string{"--limit", "30"}, "invalid --limit 30"},
		{"page", []string{"--page", "0"}, "invalid --page 0"},
		{"status", []string{"--status", "Boarding"}, `invalid --status "Boarding"`},
		{"type", []string{"--type", "Cargo"}, `invalid --type "Cargo"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{}
			_, err := execute(t, NewListCmd(client), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, client.filters)
		})
	}
}

func TestListCmdReportsFetchError(t *testing.T) {
	client := &fakeClient{listErr: errors.New("Failed to get flights")}

	_, err := execute(t, NewListCmd(client))
	assert.EqualError(t, err, "Failed to get flights")
}

func TestListAllMeansNoFilter(t *testing.T) {
	client := &fakeClient{}

	_, err := execute(t, NewListCmd(client), "--status", "All")
	require.NoError(t, err)

	assert.Equal(t, "", client.filters[0].Status)
	assert.False(t, client.filters[0].Query().Values().Has("status"))
}

func TestWatchCmdPrintsEveryView(t *testing.T) {
	orig := watchNow
	defer func() { watchNow = orig }()
	watchNow = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }

	client := &fakeClient{views: 2}
	out, err := execute(t, NewWatchCmd(client), "--type", "military")
	require.NoError(t, err)

	assert.Equal(t, "Military", client.filters[0].FlightType)
	assert.Equal(t, 2, strings.Count(out, "updated 09:30:00"))
	assert.Equal(t, 2, strings.Count(out, "PK-101"))
}

func TestWatchCmdReportsClosedChannel(t *testing.T) {
	client := &fakeClient{watchErr: errors.New("websocket: close 1006")}

	_, err := execute(t, NewWatchCmd(client))
	assert.EqualError(t, err, "live updates stopped: websocket: close 1006")
}

func TestSetStatusCmd(t *testing.T) {
	client := &fakeClient{statusRes: workflow.State{Phase: workflow.Closed, Message: "Flight status updated"}}

	out, err := execute(t, NewSetStatusCmd(client), "PK-101", "cancelled")
	require.NoError(t, err)

	assert.Equal(t, "PK-101", client.setStatus.flight)
	assert.Equal(t, domain.StatusCancelled, client.setStatus.status)
	assert.Contains(t, out, "Flight status updated")
}

func TestSetStatusCmdRejectsUnknownStatus(t *testing.T) {
	client := &fakeClient{}

	_, err := execute(t, NewSetStatusCmd(client), "PK-101", "All")
	require.Error(t, err)
	assert.Empty(t, client.setStatus.flight)
}

func TestSetStatusCmdReportsRejection(t *testing.T) {
	client := &fakeClient{statusErr: errors.New("not found")}

	_, err := execute(t, NewSetStatusCmd(client), "PK-101", "Delayed")
	assert.EqualError(t, err, "set-status PK-101: not found")
}

func TestLoginCmdWithFlags(t *testing.T) {
	client := &fakeClient{}
	p := &fakePrompter{}

	out, err := execute(t, NewLoginCmd(client, p), "--email", "a@b.c", "--password", "pw")
	require.NoError(t, err)

	assert.Equal(t, []api.Credentials{{Email: "a@b.c", Password: "pw"}}, client.creds)
	assert.Empty(t, p.asked)
	assert.Contains(t, out, "Signed in as a@b.c (admin)")
}

func TestLoginCmdPromptsForMissingValues(t *testing.T) {
	client := &fakeClient{}
	p := &fakePrompter{line: "ops@example.com", secret: "s3cret"}

	_, err := execute(t, NewLoginCmd(client, p))
	require.NoError(t, err)

	assert.Equal(t, []string{"Email: ", "Password: "}, p.asked)
	assert.Equal(t, api.Credentials{Email: "ops@example.com", Password: "s3cret"}, client.creds[0])
}

func TestLoginCmdRequiresPassword(t *testing.T) {
	client := &fakeClient{}
	p := &fakePrompter{}

	_, err := execute(t, NewLoginCmd(client, p), "--email", "a@b.c")
	require.EqualError(t, err, "email and password are required")
	assert.Empty(t, client.creds)
}

func TestLoginCmdReportsRejection(t *testing.T) {
	client := &fakeClient{loginErr: errors.New("Invalid credentials")}

	_, err := execute(t, NewLoginCmd(client, &fakePrompter{}), "--email", "a@b.c", "--password", "x")
	assert.EqualError(t, err, "login: Invalid credentials")
}

func TestRegisterCmd(t *testing.T) {
	client := &fakeClient{}

	out, err := execute(t, NewRegisterCmd(client, &fakePrompter{}), "--email", "new@b.c", "--password", "pw")
	require.NoError(t, err)

	assert.Contains(t, out, "User registered: new@b.c (user)")
}

func TestLogoutCmd(t *testing.T) {
	client := &fakeClient{}

	out, err := execute(t, NewLogoutCmd(client))
	require.NoError(t, err)

	assert.True(t, client.signedOut)
	assert.Contains(t, out, "Signed out")
}

func TestWhoamiCmd(t *testing.T) {
	orig := whoamiNow
	defer func() { whoamiNow = orig }()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	whoamiNow = func() time.Time { return now }

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    "u1",
		"email": "ops@example.com",
		"role":  "admin",
		"exp":   now.Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		session session.Session
		want    []string
	}{
		{"signed out", session.Session{}, []string{"Not signed in"}},
		{"role only", session.Session{Role: "user"}, []string{"Not signed in", "Role:    user"}},
		{"opaque", session.Session{Credential: "opaque", Role: "admin"}, []string{"Signed in", "Role:    admin", "Token:   opaque"}},
		{"jwt", session.Session{Credential: token, Role: "admin"}, []string{"Email:   ops@example.com", "User:    u1", "(valid)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewWhoamiCmd(&fakeClient{session: tt.session}))
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestWhoamiShowsExpiredToken(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u2",
		"exp": now.Add(-time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	printSession(&buf, session.Session{Credential: token}, now)

	assert.Contains(t, buf.String(), "Role:    -")
	assert.Contains(t, buf.String(), "User:    u2")
	assert.Contains(t, buf.String(), "(expired)")
}

func TestTUICmdReportsSignOut(t *testing.T) {
	out, err := execute(t, NewTUICmd(&fakeClient{tuiSignedOut: true}))
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, NewVersionCmd(&fakeClient{}))
	require.NoError(t, err)
	assert.Equal(t, "flightdeck version 1.2.3+abc\n", out)
}

func TestConstructorsPanicOnNilClient(t *testing.T) {
	assert.Panics(t, func() { NewListCmd(nil) })
	assert.Panics(t, func() { NewWatchCmd(nil) })
	assert.Panics(t, func() { NewSetStatusCmd(nil) })
	assert.Panics(t, func() { NewLoginCmd(nil, &fakePrompter{}) })
	assert.Panics(t, func() { NewRegisterCmd(nil, &fakePrompter{}) })
	assert.Panics(t, func() { NewLogoutCmd(nil) })
	assert.Panics(t, func() { NewWhoamiCmd(nil) })
	assert.Panics(t, func() { NewTUICmd(nil) })
	assert.Panics(t, func() { NewVersionCmd(nil) })
}

func TestRootHelpListsCommands(t *testing.T) {
	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	defer RootCmd.SetOut(nil)

	printHelpText(RootCmd)

	out := buf.String()
	for _, name := range []string{"tui", "list", "watch", "set-status", "login", "register", "logout", "whoami", "version"} {
		assert.Contains(t, out, "    "+name, name)
	}
	assert.Less(t, strings.Index(out, "    tui"), strings.Index(out, "    list"))
}

func TestTerminalPrompterReadsPipedInput(t *testing.T) {
	var out bytes.Buffer
	p := terminalPrompter{in: strings.NewReader("pw\n"), out: &out}

	got, err := p.ReadSecret("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "pw", got)
	assert.Equal(t, "Password: ", out.String())
}
