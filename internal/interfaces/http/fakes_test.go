package http

import (
	"context"
	"os"
	"sync"

	"chatfuse/internal/entities"
)

type fakeUserStore struct {
	mu     sync.Mutex
	users  []*entities.User
	nextID int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1}
}

func (s *fakeUserStore) Create(_ context.Context, user *entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return entities.ErrEmailRegistered
		}
		if user.Phone != "" && u.Phone == user.Phone {
			return entities.ErrPhoneRegistered
		}
	}
	user.ID = s.nextID
	s.nextID++
	copied := *user
	s.users = append(s.users, &copied)
	return nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) FindByPhone(_ context.Context, phone string) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Phone == phone {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeConnStore struct {
	mu      sync.Mutex
	conns   map[string]*entities.Connection
	updates []map[string]string
}

func newFakeConnStore(conns ...*entities.Connection) *fakeConnStore {
	s := &fakeConnStore{conns: make(map[string]*entities.Connection)}
	for _, c := range conns {
		s.conns[c.ID] = c
	}
	return s
}

func (s *fakeConnStore) Insert(_ context.Context, conn *entities.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *conn
	s.conns[conn.ID] = &copied
	return nil
}

func (s *fakeConnStore) ListByUser(_ context.Context, userID int) ([]entities.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Connection
	for _, c := range s.conns {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *fakeConnStore) GetByID(_ context.Context, id string) (*entities.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conns[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (s *fakeConnStore) Update(_ context.Context, id string, fields map[string]string) (*entities.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, fields)
	c, ok := s.conns[id]
	if !ok {
		return nil, nil
	}
	if v, ok := fields["status"]; ok {
		c.Status = v
	}
	if v, ok := fields["name"]; ok {
		c.Name = v
	}
	if v, ok := fields["webhook"]; ok {
		c.Webhook = v
	}
	copied := *c
	return &copied, nil
}

func (s *fakeConnStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, id)
	return nil
}

func (s *fakeConnStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

type fakeProvider struct {
	mu       sync.Mutex
	instance *entities.Instance
	fetchErr error
	qrCode   string
	sent     []string
}

func (p *fakeProvider) CreateInstance(context.Context, string) error { return nil }
func (p *fakeProvider) DeleteInstance(context.Context, string) error { return nil }

func (p *fakeProvider) FetchInstance(context.Context, string) (*entities.Instance, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return p.instance, nil
}

func (p *fakeProvider) ConnectInstance(context.Context, string) (string, error) {
	return p.qrCode, nil
}

func (p *fakeProvider) SetWebhook(context.Context, string, string, []string) error { return nil }
func (p *fakeProvider) FindWebhook(context.Context, string) (string, error)        { return "", nil }

func (p *fakeProvider) SendText(_ context.Context, instance, number, text string) (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, "text:"+instance+":"+number+":"+text)
	return map[string]any{"status": "sent"}, nil
}

func (p *fakeProvider) SendMedia(_ context.Context, instance, number, mediaType, caption, media string) (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, mediaType+":"+instance+":"+number+":"+media)
	return map[string]any{"status": "sent"}, nil
}

func (p *fakeProvider) SendAudio(_ context.Context, instance, number, audio string) (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, "audio:"+instance+":"+number+":"+audio)
	return map[string]any{"status": "sent"}, nil
}

type fakeStager struct {
	mu    sync.Mutex
	files map[string]string
	count int
}

func newFakeStager() *fakeStager {
	return &fakeStager{files: make(map[string]string)}
}

func (s *fakeStager) Stage(_, _, messageType, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	name := "staged-" + messageType
	s.files[name] = ""
	return name, nil
}

func (s *fakeStager) Path(fileName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, ok := s.files[fileName]
	if !ok || path == "" {
		return "", os.ErrNotExist
	}
	return path, nil
}

func (s *fakeStager) add(name, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = path
}

type fakeForwarder struct {
	mu   sync.Mutex
	urls []string
	envs []*entities.Envelope
}

func (f *fakeForwarder) Forward(_ context.Context, url string, env *entities.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	f.envs = append(f.envs, env)
	return nil
}

func (f *fakeForwarder) forwarded() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.urls)
}
