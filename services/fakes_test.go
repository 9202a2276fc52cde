package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/brackets"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/cache"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/repositories"
)

// noopExec absorbs the advisory lock statements; fakeTx serializes instead.
type noopExec struct{}

func (noopExec) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return driver.RowsAffected(1), nil
}

func (noopExec) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errors.New("noopExec: queries are not supported")
}

func (noopExec) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

// store is an in-memory database shared by the fake repositories.
type store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	tournaments map[int]models.Tournament
	users       map[int]models.User
	seeds       map[int][]models.SeedEntry
	groups      map[int][]models.Group
	rounds      map[[3]int]time.Time
	matches     map[int]models.Match
	confs       map[int]map[int]models.Confirmation

	nextID int
}

func newStore() *store {
	return &store{
		tournaments: make(map[int]models.Tournament),
		users:       make(map[int]models.User),
		seeds:       make(map[int][]models.SeedEntry),
		groups:      make(map[int][]models.Group),
		rounds:      make(map[[3]int]time.Time),
		matches:     make(map[int]models.Match),
		confs:       make(map[int]map[int]models.Confirmation),
	}
}

func (s *store) id() int {
	s.nextID++
	return s.nextID
}

func (s *store) clone() *store {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := newStore()
	c.nextID = s.nextID
	for k, v := range s.tournaments {
		c.tournaments[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.seeds {
		c.seeds[k] = append([]models.SeedEntry(nil), v...)
	}
	for k, v := range s.groups {
		c.groups[k] = append([]models.Group(nil), v...)
	}
	for k, v := range s.rounds {
		c.rounds[k] = v
	}
	for k, v := range s.matches {
		c.matches[k] = v
	}
	for k, v := range s.confs {
		inner := make(map[int]models.Confirmation, len(v))
		for p, cf := range v {
			inner[p] = cf
		}
		c.confs[k] = inner
	}
	return c
}

func (s *store) restore(c *store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments, s.users, s.seeds, s.groups = c.tournaments, c.users, c.seeds, c.groups
	s.rounds, s.matches, s.confs, s.nextID = c.rounds, c.matches, c.confs, c.nextID
}

type fakeTx struct {
	s *store
}

func (f fakeTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.s.txMu.Lock()
	defer f.s.txMu.Unlock()
	snapshot := f.s.clone()
	if err := fn(noopExec{}); err != nil {
		f.s.restore(snapshot)
		return err
	}
	return nil
}

type fakeTournamentRepo struct{ s *store }

func (r fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[t.CreatedBy]; !ok {
		return repositories.ErrTournamentInvalidOwner
	}
	t.ID = r.s.id()
	t.CreatedAt = time.Now()
	r.s.tournaments[t.ID] = *t
	return nil
}

func (r fakeTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r fakeTournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]models.Tournament, 0)
	for _, t := range r.s.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	if filter.Offset > 0 {
		if filter.Offset >= len(list) {
			return []models.Tournament{}, nil
		}
		list = list[filter.Offset:]
	}
	if filter.Limit > 0 && len(list) > filter.Limit {
		list = list[:filter.Limit]
	}
	return list, nil
}

func (r fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	r.s.tournaments[id] = t
	return nil
}

type fakeUserRepo struct{ s *store }

func (r fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
		if existing.Handle == u.Handle {
			return repositories.ErrUserHandleConflict
		}
	}
	u.ID = r.s.id()
	u.CreatedAt = time.Now()
	r.s.users[u.ID] = *u
	return nil
}

func (r fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

type fakeSeedRepo struct{ s *store }

func (r fakeSeedRepo) ReplaceAll(_ context.Context, _ repositories.SQLExecutor, tournamentID int, entries []models.SeedEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range entries {
		if _, ok := r.s.users[e.PlayerID]; !ok {
			return repositories.ErrSeedPlayerInvalid
		}
	}
	r.s.seeds[tournamentID] = append([]models.SeedEntry(nil), entries...)
	return nil
}

func (r fakeSeedRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.SeedEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := append([]models.SeedEntry{}, r.s.seeds[tournamentID]...)
	for i := range list {
		list[i].DisplayName = r.s.users[list[i].PlayerID].DisplayName
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Seed < list[j].Seed })
	return list, nil
}

type fakeGroupRepo struct{ s *store }

func (r fakeGroupRepo) CreateAll(_ context.Context, _ repositories.SQLExecutor, groups []*models.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range groups {
		g.CreatedAt = time.Now()
		cp := *g
		cp.Members = append([]models.SeedEntry(nil), g.Members...)
		r.s.groups[g.TournamentID] = append(r.s.groups[g.TournamentID], cp)
	}
	return nil
}

func (r fakeGroupRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*models.Group, 0)
	for _, g := range r.s.groups[tournamentID] {
		g := g
		g.Members = append([]models.SeedEntry{}, g.Members...)
		for i := range g.Members {
			g.Members[i].DisplayName = r.s.users[g.Members[i].PlayerID].DisplayName
		}
		list = append(list, &g)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].GroupNumber < list[j].GroupNumber })
	return list, nil
}

func (r fakeGroupRepo) GetMembers(_ context.Context, _ repositories.SQLExecutor, tournamentID, groupNumber int) ([]models.SeedEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.groups[tournamentID] {
		if g.GroupNumber == groupNumber {
			members := append([]models.SeedEntry{}, g.Members...)
			for i := range members {
				members[i].DisplayName = r.s.users[members[i].PlayerID].DisplayName
			}
			return members, nil
		}
	}
	return []models.SeedEntry{}, nil
}

func (r fakeGroupRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	groups := len(r.s.groups[tournamentID])
	members := 0
	for _, g := range r.s.groups[tournamentID] {
		members += len(g.Members)
	}
	delete(r.s.groups, tournamentID)
	return groups, members, nil
}

type fakeRoundRepo struct{ s *store }

func (r fakeRoundRepo) Create(_ context.Context, _ repositories.SQLExecutor, round *models.Round) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [3]int{round.TournamentID, round.GroupNumber, round.RoundNumber}
	if _, ok := r.s.rounds[key]; ok {
		return repositories.ErrRoundExists
	}
	round.CreatedAt = time.Now()
	r.s.rounds[key] = round.CreatedAt
	for _, m := range round.Matches {
		m.ID = r.s.id()
		m.CreatedAt = round.CreatedAt
		r.s.matches[m.ID] = *m
	}
	return nil
}

func (r fakeRoundRepo) CurrentRoundNumber(_ context.Context, _ repositories.SQLExecutor, tournamentID, groupNumber int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current := 0
	for k := range r.s.rounds {
		if k[0] == tournamentID && k[1] == groupNumber && k[2] > current {
			current = k[2]
		}
	}
	return current, nil
}

func (r fakeRoundRepo) CurrentRounds(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (map[int]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current := make(map[int]int)
	for _, g := range r.s.groups[tournamentID] {
		current[g.GroupNumber] = 0
	}
	for k := range r.s.rounds {
		if k[0] == tournamentID && k[2] > current[k[1]] {
			current[k[1]] = k[2]
		}
	}
	return current, nil
}

func (r fakeRoundRepo) CountByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for k := range r.s.rounds {
		if k[0] == tournamentID {
			n++
		}
	}
	return n, nil
}

func (r fakeRoundRepo) BusyTables(_ context.Context, _ repositories.SQLExecutor, tournamentID, excludeGroup int) (map[int]bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	busy := make(map[int]bool)
	for _, m := range r.s.matches {
		if m.TournamentID == tournamentID && m.GroupNumber != excludeGroup && m.Status != models.MatchConfirmed {
			busy[m.TableNumber] = true
		}
	}
	return busy, nil
}

func (r fakeRoundRepo) Delete(_ context.Context, _ repositories.SQLExecutor, tournamentID, groupNumber, roundNumber int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [3]int{tournamentID, groupNumber, roundNumber}
	if _, ok := r.s.rounds[key]; !ok {
		return 0, repositories.ErrRoundNotFound
	}
	delete(r.s.rounds, key)
	n := 0
	for id, m := range r.s.matches {
		if m.TournamentID == tournamentID && m.GroupNumber == groupNumber && m.RoundNumber == roundNumber {
			delete(r.s.matches, id)
			delete(r.s.confs, id)
			n++
		}
	}
	return n, nil
}

func (r fakeRoundRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rounds, matches := 0, 0
	for k := range r.s.rounds {
		if k[0] == tournamentID {
			delete(r.s.rounds, k)
			rounds++
		}
	}
	for id, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			delete(r.s.matches, id)
			delete(r.s.confs, id)
			matches++
		}
	}
	return rounds, matches, nil
}

type fakeMatchRepo struct{ s *store }

func (r fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int, _ bool) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return &m, nil
}

func (r fakeMatchRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID, groupNumber int) ([]*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*models.Match, 0)
	for _, m := range r.s.matches {
		if m.TournamentID != tournamentID || (groupNumber > 0 && m.GroupNumber != groupNumber) {
			continue
		}
		m := m
		list = append(list, &m)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.GroupNumber != b.GroupNumber {
			return a.GroupNumber < b.GroupNumber
		}
		if a.RoundNumber != b.RoundNumber {
			return a.RoundNumber < b.RoundNumber
		}
		if a.TableNumber != b.TableNumber {
			return a.TableNumber < b.TableNumber
		}
		return a.ID < b.ID
	})
	return list, nil
}

func (r fakeMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.matches[m.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	cp := *m
	cp.Confirmations = 0
	cp.MyConfirmation = nil
	r.s.matches[m.ID] = cp
	return nil
}

func (r fakeMatchRepo) UpsertConfirmation(_ context.Context, _ repositories.SQLExecutor, c *models.Confirmation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.confs[c.MatchID] == nil {
		r.s.confs[c.MatchID] = make(map[int]models.Confirmation)
	}
	c.SubmittedAt = time.Now()
	r.s.confs[c.MatchID][c.SubmittingPlayerID] = *c
	return nil
}

func (r fakeMatchRepo) ListConfirmations(_ context.Context, _ repositories.SQLExecutor, matchID int) ([]models.Confirmation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]models.Confirmation, 0, 2)
	for _, c := range r.s.confs[matchID] {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SubmittingPlayerID < list[j].SubmittingPlayerID })
	return list, nil
}

func (r fakeMatchRepo) DeleteConfirmations(_ context.Context, _ repositories.SQLExecutor, matchID int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := len(r.s.confs[matchID])
	delete(r.s.confs, matchID)
	return n, nil
}

type published struct {
	tournamentID int
	eventType    string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(tournamentID int, eventType string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{tournamentID, eventType})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.eventType
	}
	return out
}

// env wires every service over one in-memory store.
type env struct {
	store *store
	pub   *recordingPublisher

	tournaments TournamentService
	seeds       SeedService
	groups      GroupService
	rounds      RoundService
	matches     MatchService
	standings   StandingsService
	auth        AuthService

	adminID int
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryCache is a versioned StandingsCache held in maps. beforeSet, when
// set, runs once just before the next write.
type memoryCache struct {
	mu        sync.Mutex
	versions  map[int]int64
	entries   map[string][]byte
	beforeSet func()
}

func newMemoryCache() *memoryCache {
	return &memoryCache{versions: make(map[int]int64), entries: make(map[string][]byte)}
}

func (c *memoryCache) Version(_ context.Context, tournamentID int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[tournamentID], nil
}

func (c *memoryCache) Get(_ context.Context, tournamentID int, version int64, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	raw, ok := c.entries[fmt.Sprintf("%d:%d:%s", tournamentID, version, key)]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, tournamentID int, version int64, key string, value interface{}) error {
	c.mu.Lock()
	hook := c.beforeSet
	c.beforeSet = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fmt.Sprintf("%d:%d:%s", tournamentID, version, key)] = raw
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, tournamentID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[tournamentID]++
	return nil
}

func newEnv() *env {
	return newEnvWithCache(cache.NewNoopCache())
}

func newEnvWithCache(c cache.StandingsCache) *env {
	s := newStore()
	pub := &recordingPublisher{}
	logger := discardLogger()
	tx := fakeTx{s: s}
	tr, ur, sr, gr := fakeTournamentRepo{s}, fakeUserRepo{s}, fakeSeedRepo{s}, fakeGroupRepo{s}
	rr, mr := fakeRoundRepo{s}, fakeMatchRepo{s}
	gen := brackets.NewSwissRoundRobinGenerator(brackets.NewTableAssigner(7))

	e := &env{
		store:       s,
		pub:         pub,
		tournaments: NewTournamentService(tr, logger),
		seeds:       NewSeedService(tx, tr, sr, gr, logger),
		groups:      NewGroupService(tx, tr, sr, gr, rr, c, pub, logger),
		rounds:      NewRoundService(tx, tr, gr, rr, mr, gen, c, pub, logger),
		matches:     NewMatchService(tx, tr, rr, mr, c, pub, logger),
		standings:   NewStandingsService(tr, gr, rr, mr, c, logger),
		auth:        NewAuthService(ur, []string{"td@example.com"}, logger),
	}
	e.adminID = e.addUser("director")
	return e
}

func (e *env) addUser(handle string) int {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	u := models.User{ID: e.store.id(), Handle: handle, DisplayName: handle, Email: handle + "@example.com", Role: models.RolePlayer}
	e.store.users[u.ID] = u
	return u.ID
}

func (e *env) admin() Actor {
	return Actor{UserID: e.adminID, Role: models.RoleAdmin}
}
