package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dafibh/osdesk/osdesk-backend/internal/domain"
	"github.com/dafibh/osdesk/osdesk-backend/internal/metrics"
	"github.com/dafibh/osdesk/osdesk-backend/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoMemoState = `{
	"apps": [
		{"id":"a1","name":"Notes","iconKey":"StickyNote","color":"#FFEB3B","type":"memo","content":"<p>hi</p>"},
		{"id":"a2","name":"Site","iconKey":"Globe","color":"#2196F3","type":"website","url":"https://example.com"}
	],
	"appPositions": {"a1":{"row":0,"col":0},"a2":{"row":0,"col":1}}
}`

type desktopFixture struct {
	service   *DesktopService
	users     *testutil.MockUserRepository
	desktops  *testutil.MockDesktopRepository
	publisher *testutil.MockEventPublisher
	metrics   *metrics.Metrics
	owner     *domain.User
	desktop   *domain.Desktop
}

func newDesktopFixture(t *testing.T) *desktopFixture {
	t.Helper()
	users, desktops := testutil.NewMockRepositories()
	m := metrics.New(prometheus.NewRegistry())
	publisher := testutil.NewMockEventPublisher()

	service := NewDesktopService(users, desktops, m)
	service.SetEventPublisher(publisher)

	owner := addUser(users, "auth0|owner", nil)
	desktop, err := NewOSNameService(users, nil).Register(context.Background(), owner.Auth0ID, "ownerOS")
	require.NoError(t, err)

	return &desktopFixture{
		service:   service,
		users:     users,
		desktops:  desktops,
		publisher: publisher,
		metrics:   m,
		owner:     owner,
		desktop:   desktop,
	}
}

func TestGetByOSName_Visibility(t *testing.T) {
	f := newDesktopFixture(t)
	addUser(f.users, "auth0|visitor", nil)
	ctx := context.Background()

	t.Run("private desktop hidden from anonymous caller", func(t *testing.T) {
		_, err := f.service.GetByOSName(ctx, "ownerOS", "")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("private desktop hidden from other user", func(t *testing.T) {
		_, err := f.service.GetByOSName(ctx, "ownerOS", "auth0|visitor")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("private desktop visible to owner", func(t *testing.T) {
		view, err := f.service.GetByOSName(ctx, "ownerOS", "auth0|owner")
		require.NoError(t, err)
		assert.True(t, view.IsEdit)
		assert.False(t, view.IsPublic)
	})

	require.NoError(t, f.service.SetVisibility(ctx, "auth0|owner", true))

	t.Run("public desktop visible read-only", func(t *testing.T) {
		for _, caller := range []string{"", "auth0|visitor", "auth0|not-registered"} {
			view, err := f.service.GetByOSName(ctx, "ownerOS", caller)
			require.NoError(t, err)
			assert.False(t, view.IsEdit, "caller %q must not be able to edit", caller)
			assert.True(t, view.IsPublic)
			assert.Equal(t, domain.BackgroundDefault, view.Background)
		}
	})

	t.Run("unknown os name", func(t *testing.T) {
		_, err := f.service.GetByOSName(ctx, "nobody", "auth0|owner")
		assert.ErrorIs(t, err, domain.ErrDesktopNotFound)
	})
}

func TestSaveState_LastWriteWins(t *testing.T) {
	f := newDesktopFixture(t)
	ctx := context.Background()

	view, err := f.service.SaveState(ctx, "auth0|owner", []byte(twoMemoState))
	require.NoError(t, err)
	assert.Len(t, view.State.Apps, 2)
	assert.True(t, view.IsEdit)
	assert.Equal(t, "ownerOS", view.OSName)

	second := `{"apps":[{"id":"b","name":"B","iconKey":"FolderIcon","color":"#000","type":"folder"}],"appPositions":{"b":{"row":9,"col":5}}}`
	view, err = f.service.SaveState(ctx, "auth0|owner", []byte(second))
	require.NoError(t, err)
	require.Len(t, view.State.Apps, 1)
	assert.Equal(t, "b", view.State.Apps[0].ID)
	assert.Equal(t, map[string][]string{"b": {}}, view.Folders)

	own, err := f.service.GetOwn(ctx, "auth0|owner")
	require.NoError(t, err)
	assert.Equal(t, view.State, own.State)

	assert.Equal(t, 2.0, promtest.ToFloat64(f.metrics.StateSaves.WithLabelValues(metrics.OutcomeSaved)))
	assert.Equal(t, []string{"desktop.state_updated", "desktop.state_updated"}, f.publisher.EventTypes())
	assert.Equal(t, f.desktop.ID, f.publisher.Events[0].DesktopID)
}

func TestSaveState_ReportsFolderContents(t *testing.T) {
	f := newDesktopFixture(t)

	raw := `{"apps":[
		{"id":"f","name":"Work","iconKey":"FolderIcon","color":"#607D8B","type":"folder"},
		{"id":"m1","name":"One","iconKey":"StickyNote","color":"#FFEB3B","type":"memo"},
		{"id":"m2","name":"Two","iconKey":"StickyNote","color":"#FFEB3B","type":"memo"}
	],"appPositions":{"f":{"row":0,"col":0},"m1":{"folderId":"f"},"m2":{"row":0,"col":1}}}`

	view, err := f.service.SaveState(context.Background(), "auth0|owner", []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"f": {"m1"}}, view.Folders)
}

func TestSaveState_RejectedDocumentIsNotWritten(t *testing.T) {
	f := newDesktopFixture(t)
	ctx := context.Background()

	_, err := f.service.SaveState(ctx, "auth0|owner", []byte(twoMemoState))
	require.NoError(t, err)
	writes := f.desktops.UpdateStateCalls

	colliding := `{"apps":[
		{"id":"a1","name":"Notes","iconKey":"StickyNote","color":"#FFEB3B"},
		{"id":"a2","name":"Site","iconKey":"Globe","color":"#2196F3"}
	],"appPositions":{"a1":{"row":0,"col":0},"a2":{"row":0,"col":0}}}`

	_, err = f.service.SaveState(ctx, "auth0|owner", []byte(colliding))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	var cerr *domain.ConsistencyError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, []domain.GridPosition{{Row: 0, Col: 0}}, cerr.CollidingPositions)

	_, err = f.service.SaveState(ctx, "auth0|owner", []byte(`{"apps":"nope"}`))
	var shapeErr *domain.ShapeError
	require.True(t, errors.As(err, &shapeErr))

	assert.Equal(t, writes, f.desktops.UpdateStateCalls, "rejected documents must not reach the store")

	own, err := f.service.GetOwn(ctx, "auth0|owner")
	require.NoError(t, err)
	assert.Len(t, own.State.Apps, 2)

	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.StateSaves.WithLabelValues(metrics.OutcomeInconsistent)))
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.StateSaves.WithLabelValues(metrics.OutcomeShapeError)))
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.ValidationFailures.WithLabelValues(domain.CategoryCollidingPositions)))
}

func TestSaveState_SanitizesContent(t *testing.T) {
	f := newDesktopFixture(t)

	raw := `{"apps":[{"id":"m","name":"Memo","iconKey":"StickyNote","color":"#fff","type":"memo",
		"content":"<p>hello</p><script>alert(1)</script><a href=\"javascript:alert(2)\">x</a>"}],
		"appPositions":{"m":{"row":1,"col":1}}}`

	view, err := f.service.SaveState(context.Background(), "auth0|owner", []byte(raw))
	require.NoError(t, err)

	content := view.State.Apps[0].Content
	assert.Contains(t, content, "<p>hello</p>")
	assert.NotContains(t, content, "<script>")
	assert.NotContains(t, content, "javascript:")
}

func TestSaveState_WithoutDesktop(t *testing.T) {
	f := newDesktopFixture(t)
	addUser(f.users, "auth0|unregistered", nil)

	_, err := f.service.SaveState(context.Background(), "auth0|unregistered", []byte(twoMemoState))
	assert.ErrorIs(t, err, domain.ErrDesktopNotFound)
}

func TestGetOwn_CorruptStoredState(t *testing.T) {
	f := newDesktopFixture(t)
	f.desktops.SetRawState(f.owner.ID, `{"apps":[{"id":"a","name":"A","iconKey":"Globe","color":"#fff"}],"appPositions":{}}`)

	_, err := f.service.GetOwn(context.Background(), "auth0|owner")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCorruptState)
	assert.False(t, errors.Is(err, domain.ErrInvalidState), "corrupt reads must not look like caller input errors")
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.CorruptReads))
}

func TestSetVisibility(t *testing.T) {
	f := newDesktopFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.SetVisibility(ctx, "auth0|owner", true))
	assert.Empty(t, f.publisher.Disconnected)

	require.NoError(t, f.service.SetVisibility(ctx, "auth0|owner", false))
	assert.Equal(t, []int32{f.desktop.ID}, f.publisher.Disconnected)

	assert.Equal(t, []string{"desktop.visibility_updated", "desktop.visibility_updated"}, f.publisher.EventTypes())

	addUser(f.users, "auth0|nodesk", nil)
	assert.ErrorIs(t, f.service.SetVisibility(ctx, "auth0|nodesk", true), domain.ErrDesktopNotFound)
}

func TestSetBackground(t *testing.T) {
	f := newDesktopFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.SetBackground(ctx, "auth0|owner", "SAKURA"))

	view, err := f.service.GetOwn(ctx, "auth0|owner")
	require.NoError(t, err)
	assert.Equal(t, domain.BackgroundSakura, view.Background)

	assert.ErrorIs(t, f.service.SetBackground(ctx, "auth0|owner", "PURPLE"), domain.ErrInvalidBackground)
	assert.ErrorIs(t, f.service.SetBackground(ctx, "auth0|owner", "sakura"), domain.ErrInvalidBackground)

	view, err = f.service.GetOwn(ctx, "auth0|owner")
	require.NoError(t, err)
	assert.Equal(t, domain.BackgroundSakura, view.Background, "invalid background must leave the stored value unchanged")

	assert.Equal(t, []string{"desktop.background_updated"}, f.publisher.EventTypes())
}
