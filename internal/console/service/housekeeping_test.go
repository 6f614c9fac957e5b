package service_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brainhope/console/internal/console/domain"
	"github.com/brainhope/console/internal/console/service"
	"github.com/brainhope/console/internal/console/store/drivers/sqlite"
)

func TestHousekeepingSweepsExpiredSession(t *testing.T) {
	t.Parallel()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sessions := &service.SessionStore{Sessions: st.Sessions()}
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, domain.Session{
		AccessToken: "stale",
		TokenExpiry: "2001-01-01T00:00:00",
		UserEmail:   "ops@brainhope.example",
	}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hk := service.NewHousekeepingService(sessions, logger, time.Hour)
	hk.Start()
	hk.Stop()

	sess, err := sessions.Current(ctx)
	require.NoError(t, err)
	require.False(t, sess.Exists())
}

func TestHousekeepingLeavesLiveSessionAlone(t *testing.T) {
	t.Parallel()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sessions := &service.SessionStore{Sessions: st.Sessions()}
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, domain.Session{
		AccessToken: "live",
		TokenExpiry: "2099-01-01T00:00:00",
		UserEmail:   "ops@brainhope.example",
	}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hk := service.NewHousekeepingService(sessions, logger, time.Hour)
	hk.Start()
	hk.Stop()

	sess, err := sessions.Current(ctx)
	require.NoError(t, err)
	require.True(t, sess.Exists())
	require.Equal(t, "live", sess.AccessToken)
}
