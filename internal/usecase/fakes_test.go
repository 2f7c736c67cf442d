package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"basho/internal/domain/entity"
	"basho/pkg/errors"
)

type memOrderRepo struct {
	mu      sync.Mutex
	seq     int
	orders  map[string]*entity.CustomOrder
	failAll bool
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*entity.CustomOrder)}
}

func copyOrder(o *entity.CustomOrder) *entity.CustomOrder {
	cp := *o
	if o.QuotedPrice != nil {
		p := *o.QuotedPrice
		cp.QuotedPrice = &p
	}
	if o.PaidAt != nil {
		t := *o.PaidAt
		cp.PaidAt = &t
	}
	cp.ReferenceImages = append([]string(nil), o.ReferenceImages...)
	return &cp
}

func (r *memOrderRepo) Create(ctx context.Context, order *entity.CustomOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errors.Internal("store unavailable", nil)
	}
	r.seq++
	if order.ID == "" {
		order.ID = fmt.Sprintf("order-%d", r.seq)
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Email = strings.ToLower(order.Email)
	r.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *memOrderRepo) GetByID(ctx context.Context, id string) (*entity.CustomOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, errors.NotFound("Custom order", nil)
	}
	return copyOrder(order), nil
}

func (r *memOrderRepo) Update(ctx context.Context, order *entity.CustomOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errors.Internal("store unavailable", nil)
	}
	if _, ok := r.orders[order.ID]; !ok {
		return errors.NotFound("Custom order", nil)
	}
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *memOrderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
	return nil
}

func (r *memOrderRepo) ListByEmail(ctx context.Context, email string, limit, offset int) ([]*entity.CustomOrder, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*entity.CustomOrder
	for _, o := range r.orders {
		if strings.EqualFold(o.Email, email) {
			matched = append(matched, copyOrder(o))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, limit, offset), int64(len(matched)), nil
}

func (r *memOrderRepo) List(ctx context.Context, limit, offset int) ([]*entity.CustomOrder, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*entity.CustomOrder
	for _, o := range r.orders {
		all = append(all, copyOrder(o))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, limit, offset), int64(len(all)), nil
}

func paginate(orders []*entity.CustomOrder, limit, offset int) []*entity.CustomOrder {
	if offset >= len(orders) {
		return nil
	}
	orders = orders[offset:]
	if limit > 0 && limit < len(orders) {
		orders = orders[:limit]
	}
	return orders
}

type memMessageRepo struct {
	mu           sync.Mutex
	seq          int
	messages     map[string][]*entity.Message
	failMarkRead bool
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{messages: make(map[string][]*entity.Message)}
}

func (r *memMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if message.ID == "" {
		message.ID = fmt.Sprintf("msg-%d", r.seq)
	}
	message.CreatedAt = time.Now()
	cp := *message
	r.messages[message.CustomOrderID] = append(r.messages[message.CustomOrderID], &cp)
	return nil
}

func (r *memMessageRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	thread := r.messages[orderID]
	out := make([]*entity.Message, 0, len(thread))
	for _, m := range thread {
		cp := *m
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memMessageRepo) MarkRead(ctx context.Context, orderID string, messageIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failMarkRead {
		return errors.Internal("store unavailable", nil)
	}
	ids := make(map[string]bool, len(messageIDs))
	for _, id := range messageIDs {
		ids[id] = true
	}
	for _, m := range r.messages[orderID] {
		if ids[m.ID] {
			m.Read = true
		}
	}
	return nil
}

func (r *memMessageRepo) CountUnreadBySender(ctx context.Context, senderType string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for orderID, thread := range r.messages {
		for _, m := range thread {
			if m.SenderType == senderType && !m.Read {
				counts[orderID]++
			}
		}
	}
	return counts, nil
}

type memUserRepo struct {
	users map[string]*entity.User
}

func newMemUserRepo(users ...*entity.User) *memUserRepo {
	repo := &memUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	cp := *user
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

type sentMail struct {
	kind string
	to   []string
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failAll bool
}

func (m *fakeMailer) Send(ctx context.Context, kind string, recipients []string, data map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return fmt.Errorf("smtp unreachable")
	}
	m.sent = append(m.sent, sentMail{kind: kind, to: append([]string(nil), recipients...)})
	return nil
}

func (m *fakeMailer) sentKinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]string, 0, len(m.sent))
	for _, s := range m.sent {
		kinds = append(kinds, s.kind)
	}
	return kinds
}

type fakeUploader struct {
	mu      sync.Mutex
	uploads int
	failAll bool
}

func (u *fakeUploader) UploadFile(ctx context.Context, file io.Reader, fileType, folder string, isPublic bool) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failAll {
		return "", fmt.Errorf("bucket unavailable")
	}
	u.uploads++
	return fmt.Sprintf("https://storage.example.com/%s/upload-%d", folder, u.uploads), nil
}

func (u *fakeUploader) Close() error { return nil }

type fakeNotifier struct {
	mu       sync.Mutex
	toUsers  map[string]int
	toAdmins int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{toUsers: make(map[string]int)}
}

func (n *fakeNotifier) SendToUser(userID string, payload []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toUsers[userID]++
}

func (n *fakeNotifier) SendToAdmins(payload []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toAdmins++
}
