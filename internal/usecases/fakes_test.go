package usecases

import (
	"context"
	"fmt"
	"sync"

	"chatfuse/internal/entities"
)

// In-memory stand-ins for the ports, shared by the usecase tests.

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
	mu        sync.Mutex
	conns     map[string]*entities.Connection
	updates   []map[string]string
	insertErr error
	updateErr error
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
	if s.insertErr != nil {
		return s.insertErr
	}
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
	if s.updateErr != nil {
		return nil, s.updateErr
	}
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

type sentMessage struct {
	kind     string
	instance string
	number   string
	text     string
	media    string
}

type fakeProvider struct {
	mu sync.Mutex

	instance   *entities.Instance
	fetchErr   error
	createErr  error
	deleteErr  error
	connectErr error
	qrCode     string

	events []string
	sent   []sentMessage
}

func (p *fakeProvider) record(event string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *fakeProvider) CreateInstance(_ context.Context, name string) error {
	p.record("create:" + name)
	return p.createErr
}

func (p *fakeProvider) DeleteInstance(_ context.Context, name string) error {
	p.record("delete:" + name)
	return p.deleteErr
}

func (p *fakeProvider) FetchInstance(_ context.Context, name string) (*entities.Instance, error) {
	p.record("fetch:" + name)
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return p.instance, nil
}

func (p *fakeProvider) ConnectInstance(_ context.Context, name string) (string, error) {
	p.record("connect:" + name)
	if p.connectErr != nil {
		return "", p.connectErr
	}
	return p.qrCode, nil
}

func (p *fakeProvider) SetWebhook(_ context.Context, name, _ string, _ []string) error {
	p.record("setWebhook:" + name)
	return nil
}

func (p *fakeProvider) FindWebhook(_ context.Context, name string) (string, error) {
	p.record("findWebhook:" + name)
	return "", nil
}

func (p *fakeProvider) SendText(_ context.Context, instance, number, text string) (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sentMessage{kind: "text", instance: instance, number: number, text: text})
	return map[string]any{"status": "sent"}, nil
}

func (p *fakeProvider) SendMedia(_ context.Context, instance, number, mediaType, caption, media string) (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sentMessage{kind: mediaType, instance: instance, number: number, text: caption, media: media})
	return map[string]any{"status": "sent"}, nil
}

func (p *fakeProvider) SendAudio(_ context.Context, instance, number, audio string) (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sentMessage{kind: "audio", instance: instance, number: number, media: audio})
	return map[string]any{"status": "sent"}, nil
}

type fakeStager struct {
	mu     sync.Mutex
	staged []string
	err    error
}

func (s *fakeStager) Stage(_, remoteJid, messageType, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	name := fmt.Sprintf("staged-%d-%s", len(s.staged), messageType)
	s.staged = append(s.staged, name)
	return name, nil
}

func (s *fakeStager) Path(fileName string) (string, error) {
	return "/tmp/" + fileName, nil
}

type forwardedCall struct {
	url string
	env entities.Envelope
}

type fakeForwarder struct {
	mu    sync.Mutex
	calls []forwardedCall
	err   error
}

func (f *fakeForwarder) Forward(_ context.Context, url string, env *entities.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, forwardedCall{url: url, env: *env})
	return f.err
}
