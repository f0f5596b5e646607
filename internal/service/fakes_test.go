package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"Synergy_Link/internal/model"
	"Synergy_Link/internal/repository/mysql"

	"gorm.io/gorm"
)

type fakeUsers struct {
	mu      sync.Mutex
	users   map[string]*model.User
	findErr error
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{users: make(map[string]*model.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; ok {
		return false, nil
	}
	cp := *u
	f.users[u.ID] = &cp
	return true, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) ListApproved(_ context.Context, limit int) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		if u.Status == model.UserApproved && u.Profile.FullName != "" {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUsers) update(id string, fn func(u *model.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	fn(u)
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id string, p model.Profile, oi model.OpenInnovation) error {
	return f.update(id, func(u *model.User) { u.Profile = p; u.OpenInnovation = oi })
}

func (f *fakeUsers) UpdateBusinessCard(_ context.Context, id, url string) error {
	return f.update(id, func(u *model.User) { u.BusinessCardImageURL = url })
}

func (f *fakeUsers) UpdateDeviceToken(_ context.Context, id, token string) error {
	return f.update(id, func(u *model.User) { u.DeviceToken = token })
}

type fakeSwipes struct {
	mu       sync.Mutex
	rows     map[[2]string]model.Swipe
	likedErr error
}

func newFakeSwipes() *fakeSwipes {
	return &fakeSwipes{rows: make(map[[2]string]model.Swipe)}
}

func (f *fakeSwipes) Record(_ context.Context, s *model.Swipe) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := [2]string{s.SwiperID, s.TargetID}
	if _, ok := f.rows[k]; ok {
		return false, nil
	}
	f.rows[k] = *s
	return true, nil
}

func (f *fakeSwipes) Find(_ context.Context, swiperID, targetID string) (*model.Swipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[[2]string{swiperID, targetID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (f *fakeSwipes) HasLiked(_ context.Context, fromID, toID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.likedErr != nil {
		return false, f.likedErr
	}
	s, ok := f.rows[[2]string{fromID, toID}]
	return ok && s.Action == model.SwipeLike, nil
}

func (f *fakeSwipes) SwipedTargets(_ context.Context, swiperID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for k := range f.rows {
		if k[0] == swiperID {
			ids = append(ids, k[1])
		}
	}
	return ids, nil
}

func (f *fakeSwipes) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeMatches struct {
	mu   sync.Mutex
	rows map[string]model.Match
}

func newFakeMatches(ms ...*model.Match) *fakeMatches {
	f := &fakeMatches{rows: make(map[string]model.Match)}
	for _, m := range ms {
		f.rows[m.ID] = *m
	}
	return f
}

func (f *fakeMatches) CreateIfAbsent(_ context.Context, m *model.Match) (*model.Match, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stored, ok := f.rows[m.ID]; ok {
		return &stored, false, nil
	}
	f.rows[m.ID] = *m
	cp := *m
	return &cp, true, nil
}

func (f *fakeMatches) MarkNotified(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[id]
	if !ok || m.NotifiedAt != nil {
		return nil
	}
	m.NotifiedAt = &at
	f.rows[id] = m
	return nil
}

func (f *fakeMatches) FindByID(_ context.Context, id string) (*model.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (f *fakeMatches) ListByUser(_ context.Context, userID string) ([]model.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Match
	for _, m := range f.rows {
		if m.HasUser(userID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeMatches) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeMessages struct {
	mu   sync.Mutex
	rows []model.ChatMessage
}

func (f *fakeMessages) Create(_ context.Context, msg *model.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *msg)
	return nil
}

func (f *fakeMessages) ListByMatch(_ context.Context, matchID string, limit int) ([]model.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ChatMessage
	for _, m := range f.rows {
		if m.MatchID == matchID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeCommunities serves both CommunityStore and MemberStore. The mutex
// stands in for the row lock Support takes.
type fakeCommunities struct {
	mu         sync.Mutex
	rows       map[string]*model.Community
	members    map[string]map[string]bool
	supporters map[string][]string
}

func newFakeCommunities() *fakeCommunities {
	return &fakeCommunities{
		rows:       make(map[string]*model.Community),
		members:    make(map[string]map[string]bool),
		supporters: make(map[string][]string),
	}
}

func (f *fakeCommunities) Create(_ context.Context, c *model.Community) (*model.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.SupporterCount = 1
	c.CreatedAt = time.Now()
	cp := *c
	f.rows[c.ID] = &cp
	f.members[c.ID] = map[string]bool{c.CreatorID: true}
	f.supporters[c.ID] = []string{c.CreatorID}
	c.MemberIDs = []string{c.CreatorID}
	c.SupporterIDs = []string{c.CreatorID}
	return c, nil
}

func (f *fakeCommunities) FindByID(_ context.Context, id string) (*model.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	for uid := range f.members[id] {
		cp.MemberIDs = append(cp.MemberIDs, uid)
	}
	sort.Strings(cp.MemberIDs)
	cp.SupporterIDs = append([]string(nil), f.supporters[id]...)
	return &cp, nil
}

func (f *fakeCommunities) List(_ context.Context, status string, offset, limit int) ([]model.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Community
	for _, c := range f.rows {
		if status == "" || c.Status == status {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCommunities) Support(_ context.Context, communityID, userID string, threshold int) (*mysql.SupportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[communityID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for _, id := range f.supporters[communityID] {
		if id == userID {
			cp := *c
			return &mysql.SupportResult{Community: &cp}, nil
		}
	}
	f.supporters[communityID] = append(f.supporters[communityID], userID)
	n := len(f.supporters[communityID])
	res := &mysql.SupportResult{Added: true}
	if c.ShouldPromote(n, threshold) {
		now := time.Now()
		c.Status = model.CommunityOfficial
		c.OfficializedAt = &now
		res.Promoted = true
	}
	c.SupporterCount = n
	cp := *c
	res.Community = &cp
	return res, nil
}

func (f *fakeCommunities) Join(_ context.Context, communityID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[communityID] == nil {
		f.members[communityID] = make(map[string]bool)
	}
	if f.members[communityID][userID] {
		return false, nil
	}
	f.members[communityID][userID] = true
	return true, nil
}

func (f *fakeCommunities) Leave(_ context.Context, communityID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members[communityID], userID)
	return nil
}

type fakeOutbox struct {
	mu     sync.Mutex
	nextID uint64
	rows   []model.PushOutbox
}

func (f *fakeOutbox) Insert(_ context.Context, ob *model.PushOutbox) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if ob.DedupKey != "" && r.DedupKey == ob.DedupKey {
			return nil
		}
	}
	f.nextID++
	ob.ID = f.nextID
	f.rows = append(f.rows, *ob)
	return nil
}

func (f *fakeOutbox) List(_ context.Context, batchSize, maxRetry int) ([]model.PushOutbox, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PushOutbox
	for _, r := range f.rows {
		if r.Status == model.OutboxPending || (r.Status == model.OutboxFailed && r.Retry < maxRetry) {
			out = append(out, r)
		}
		if len(out) == batchSize {
			break
		}
	}
	return out, nil
}

func (f *fakeOutbox) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakeOutbox) set(id uint64, fn func(r *model.PushOutbox)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			fn(&f.rows[i])
		}
	}
}

func (f *fakeOutbox) RetryUpdate(_ context.Context, id uint64) error {
	f.set(id, func(r *model.PushOutbox) { r.Status = model.OutboxFailed; r.Retry++ })
	return nil
}

func (f *fakeOutbox) SuccessUpdate(_ context.Context, id uint64) error {
	f.set(id, func(r *model.PushOutbox) { r.Status = model.OutboxSent })
	return nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	matches  []string
	messages []string
	err      error
}

func (n *recordingNotifier) setErr(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

func (n *recordingNotifier) MatchCreated(_ context.Context, m *model.Match) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.matches = append(n.matches, m.ID)
	return n.err
}

func (n *recordingNotifier) MessageCreated(_ context.Context, _ *model.Match, msg *model.ChatMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg.ID)
	return n.err
}

func (n *recordingNotifier) matchCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.matches)
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []PushMessage
}

func (d *recordingDispatcher) Dispatch(_ context.Context, msg PushMessage) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, msg)
	return nil
}

type fakeUploader struct {
	keys []string
}

func (u *fakeUploader) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	u.keys = append(u.keys, key)
	return "https://cdn.test/" + key, nil
}

func approvedUser(id, name string) *model.User {
	return &model.User{
		ID:      id,
		Email:   id + "@example.com",
		Status:  model.UserApproved,
		Profile: model.Profile{FullName: name},
	}
}
