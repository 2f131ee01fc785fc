package database

import (
	"context"
	"sort"
	"sync"

	"socialhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store used by tests. Documents are copied on the
// way in and out so callers never share slices with the stored record.
type Memory struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
	posts map[primitive.ObjectID]models.Post

	// FailSave, when set, is consulted before every save.
	FailSave func(doc any) error
}

func NewMemory() *Memory {
	return &Memory{
		users: make(map[primitive.ObjectID]models.User),
		posts: make(map[primitive.ObjectID]models.Post),
	}
}

func (m *Memory) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u = copyUser(u)
	return &u, nil
}

func (m *Memory) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			u = copyUser(u)
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) SaveUser(_ context.Context, u *models.User) error {
	if err := m.failSave(u); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, existing := range m.users {
		if existing.Email == u.Email && id != u.ID {
			return ErrDuplicateKey
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.users[u.ID] = copyUser(*u)
	return nil
}

func (m *Memory) FindPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = copyPost(p)
	return &p, nil
}

func (m *Memory) FindPostsByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	posts := []models.Post{}
	for _, p := range m.posts {
		if p.UserID == ownerID {
			posts = append(posts, copyPost(p))
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID.Hex() > posts[j].ID.Hex()
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (m *Memory) SavePost(_ context.Context, p *models.Post) error {
	if err := m.failSave(p); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.posts[p.ID] = copyPost(*p)
	return nil
}

func (m *Memory) DeletePost(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *Memory) failSave(doc any) error {
	if m.FailSave == nil {
		return nil
	}
	return m.FailSave(doc)
}

func copyUser(u models.User) models.User {
	u.Followers = append([]primitive.ObjectID{}, u.Followers...)
	u.Following = append([]primitive.ObjectID{}, u.Following...)
	return u
}

func copyPost(p models.Post) models.Post {
	p.Likes = append([]primitive.ObjectID{}, p.Likes...)
	p.Comments = append([]models.Comment{}, p.Comments...)
	return p
}
