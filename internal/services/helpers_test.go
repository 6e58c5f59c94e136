package services

import (
	"regexp"
	"testing"
	"time"

	"github.com/Dias221467/shadowmeet/internal/models"
	"github.com/Dias221467/shadowmeet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-at-least-16-chars!!"

var (
	testSessions  = Sessions{Secret: testSecret, Expiry: time.Hour}
	testPasswords = Passwords{Cost: bcrypt.MinCost}
)

// clock is a settable time source.
type clock struct{ t time.Time }

func newClock() *clock { return &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)} }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func assertKind(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	if msg != "" {
		assert.Equal(t, msg, err.Error())
	}
}

func addUser(t *testing.T, store *testutil.UserStore, email string, onboarded bool) *models.User {
	t.Helper()
	hash, err := testPasswords.Hash("password1")
	require.NoError(t, err)
	return store.Add(&models.User{
		ID:          primitive.NewObjectID(),
		Email:       email,
		Password:    hash,
		FullName:    email,
		IsOnboarded: onboarded,
	})
}

var otpInBody = regexp.MustCompile(`\*\*(\d{6})\*\*`)

func codeFrom(t *testing.T, mailer *testutil.Mailer) string {
	t.Helper()
	msg, ok := mailer.Last()
	require.True(t, ok, "no email sent")
	m := otpInBody.FindStringSubmatch(msg.Body)
	require.Len(t, m, 2, "no code in %q", msg.Body)
	return m[1]
}

var tokenInLink = regexp.MustCompile(`token=([0-9a-f]{64})`)

func resetTokenFrom(t *testing.T, mailer *testutil.Mailer) string {
	t.Helper()
	msg, ok := mailer.Last()
	require.True(t, ok, "no email sent")
	m := tokenInLink.FindStringSubmatch(msg.Body)
	require.Len(t, m, 2, "no token in %q", msg.Body)
	return m[1]
}
