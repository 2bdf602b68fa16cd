package testutil

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/osdesk/osdesk-backend/internal/domain"
	"github.com/dafibh/osdesk/osdesk-backend/internal/websocket"
	"github.com/google/uuid"
)

// NewMockRepositories creates a user and desktop repository that share state,
// so registering an OS name makes the desktop visible through both.
func NewMockRepositories() (*MockUserRepository, *MockDesktopRepository) {
	desktops := NewMockDesktopRepository()
	users := NewMockUserRepository()
	users.desktops = desktops
	desktops.users = users
	return users, desktops
}

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[string]*domain.User
	ByID     map[uuid.UUID]*domain.User
	CreateFn func(auth0ID, email string, name, pictureURL *string) (*domain.User, error)

	// RegisterErr, when set, is returned by RegisterOSName
	RegisterErr error

	desktops *MockDesktopRepository
	mu       sync.RWMutex
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// ExistsByOSName reports whether an OS name is taken
func (m *MockUserRepository) ExistsByOSName(ctx context.Context, osName string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byOSName(osName) != nil, nil
}

func (m *MockUserRepository) byOSName(osName string) *domain.User {
	for _, user := range m.ByID {
		if user.OSName != nil && *user.OSName == osName {
			return user
		}
	}
	return nil
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(auth0ID, email, name, pictureURL)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:         uuid.New(),
		Auth0ID:    auth0ID,
		Email:      email,
		Name:       name,
		PictureURL: pictureURL,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// RegisterOSName assigns the OS name and creates the user's desktop
func (m *MockUserRepository) RegisterOSName(ctx context.Context, userID uuid.UUID, osName string, initialState []byte) (*domain.Desktop, error) {
	if m.RegisterErr != nil {
		return nil, m.RegisterErr
	}

	m.mu.Lock()
	user, ok := m.ByID[userID]
	if !ok {
		m.mu.Unlock()
		return nil, domain.ErrUserNotFound
	}
	if user.OSName != nil {
		m.mu.Unlock()
		return nil, domain.ErrOSNameAlreadySet
	}
	if m.byOSName(osName) != nil {
		m.mu.Unlock()
		return nil, domain.ErrOSNameTaken
	}
	name := osName
	user.OSName = &name
	m.mu.Unlock()

	if m.desktops == nil {
		return &domain.Desktop{UserID: userID, OSName: osName, RawState: initialState, Background: domain.BackgroundDefault}, nil
	}
	return m.desktops.create(userID, initialState), nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockDesktopRepository is a mock implementation of domain.DesktopRepository
type MockDesktopRepository struct {
	ByUserID map[uuid.UUID]*domain.Desktop
	NextID   int32

	// UpdateErr, when set, is returned by every update
	UpdateErr error
	// UpdateStateCalls counts writes of the state column
	UpdateStateCalls int
	// ListErr, when set, is returned by ListAfter
	ListErr error

	users *MockUserRepository
	mu    sync.RWMutex
}

// NewMockDesktopRepository creates a new MockDesktopRepository
func NewMockDesktopRepository() *MockDesktopRepository {
	return &MockDesktopRepository{
		ByUserID: make(map[uuid.UUID]*domain.Desktop),
		NextID:   1,
	}
}

func (m *MockDesktopRepository) create(userID uuid.UUID, state []byte) *domain.Desktop {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.ByUserID[userID]; ok {
		return m.withOSName(d)
	}
	d := &domain.Desktop{
		ID:         m.NextID,
		UserID:     userID,
		RawState:   append([]byte(nil), state...),
		Background: domain.BackgroundDefault,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	m.NextID++
	m.ByUserID[userID] = d
	return m.withOSName(d)
}

// withOSName returns a copy with OSName resolved through the linked users
func (m *MockDesktopRepository) withOSName(d *domain.Desktop) *domain.Desktop {
	cp := *d
	cp.RawState = append([]byte(nil), d.RawState...)
	if m.users != nil {
		m.users.mu.RLock()
		if user, ok := m.users.ByID[d.UserID]; ok && user.OSName != nil {
			cp.OSName = *user.OSName
		}
		m.users.mu.RUnlock()
	}
	return &cp
}

// GetByUserID retrieves a desktop by owner
func (m *MockDesktopRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Desktop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.ByUserID[userID]; ok {
		return m.withOSName(d), nil
	}
	return nil, domain.ErrDesktopNotFound
}

// GetByOSName retrieves a desktop through the owner's OS name
func (m *MockDesktopRepository) GetByOSName(ctx context.Context, osName string) (*domain.Desktop, error) {
	if m.users == nil {
		return nil, domain.ErrDesktopNotFound
	}
	m.users.mu.RLock()
	user := m.users.byOSName(osName)
	m.users.mu.RUnlock()
	if user == nil {
		return nil, domain.ErrDesktopNotFound
	}
	return m.GetByUserID(ctx, user.ID)
}

// UpdateState replaces the stored state
func (m *MockDesktopRepository) UpdateState(ctx context.Context, userID uuid.UUID, state []byte) error {
	return m.update(userID, func(d *domain.Desktop) {
		d.RawState = append([]byte(nil), state...)
		m.UpdateStateCalls++
	})
}

// UpdateVisibility sets the public flag
func (m *MockDesktopRepository) UpdateVisibility(ctx context.Context, userID uuid.UUID, isPublic bool) error {
	return m.update(userID, func(d *domain.Desktop) { d.IsPublic = isPublic })
}

// UpdateBackground sets the background
func (m *MockDesktopRepository) UpdateBackground(ctx context.Context, userID uuid.UUID, background domain.Background) error {
	return m.update(userID, func(d *domain.Desktop) { d.Background = background })
}

// ListAfter returns desktops with an ID greater than afterID in ID order
func (m *MockDesktopRepository) ListAfter(ctx context.Context, afterID int32, limit int) ([]*domain.Desktop, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var desktops []*domain.Desktop
	for _, d := range m.ByUserID {
		if d.ID > afterID {
			desktops = append(desktops, m.withOSName(d))
		}
	}
	sort.Slice(desktops, func(i, j int) bool { return desktops[i].ID < desktops[j].ID })
	if limit > 0 && len(desktops) > limit {
		desktops = desktops[:limit]
	}
	return desktops, nil
}

func (m *MockDesktopRepository) update(userID uuid.UUID, apply func(d *domain.Desktop)) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.ByUserID[userID]
	if !ok {
		return domain.ErrDesktopNotFound
	}
	apply(d)
	d.UpdatedAt = time.Now()
	return nil
}

// AddDesktop adds a desktop to the mock repository (helper for tests)
func (m *MockDesktopRepository) AddDesktop(desktop *domain.Desktop) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if desktop.ID == 0 {
		desktop.ID = m.NextID
		m.NextID++
	}
	m.ByUserID[desktop.UserID] = desktop
}

// SetRawState overwrites the stored state without validation (helper for tests)
func (m *MockDesktopRepository) SetRawState(userID uuid.UUID, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.ByUserID[userID]; ok {
		d.RawState = []byte(raw)
	}
}

// MockIconRepository is an in-memory implementation of storage.IconRepository
type MockIconRepository struct {
	Objects     map[string][]byte
	UploadErr   error
	PresignBase string
	mu          sync.RWMutex
}

// NewMockIconRepository creates a new MockIconRepository
func NewMockIconRepository() *MockIconRepository {
	return &MockIconRepository{
		Objects:     make(map[string][]byte),
		PresignBase: "https://bucket.example.com/",
	}
}

// Upload stores the object in memory
func (m *MockIconRepository) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) error {
	if m.UploadErr != nil {
		return m.UploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = buf.Bytes()
	return nil
}

// Delete removes the object
func (m *MockIconRepository) Delete(ctx context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectPath)
	return nil
}

// Exists reports whether the object is stored
func (m *MockIconRepository) Exists(ctx context.Context, objectPath string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.Objects[objectPath]
	return ok, nil
}

// GeneratePresignedURL returns a fake signed URL
func (m *MockIconRepository) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return m.PresignBase + objectPath + "?X-Amz-Expires=" + expiry.String(), nil
}

// MockEventPublisher records published events and viewer disconnects
type MockEventPublisher struct {
	Events       []PublishedEvent
	Disconnected []int32
	mu           sync.Mutex
}

// PublishedEvent is an event captured by MockEventPublisher
type PublishedEvent struct {
	DesktopID int32
	Event     websocket.Event
}

var _ websocket.EventPublisher = (*MockEventPublisher)(nil)

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(desktopID int32, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{DesktopID: desktopID, Event: event})
}

// DisconnectViewers records the disconnect request
func (m *MockEventPublisher) DisconnectViewers(desktopID int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Disconnected = append(m.Disconnected, desktopID)
}

// EventTypes returns the types of all recorded events in order
func (m *MockEventPublisher) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}
