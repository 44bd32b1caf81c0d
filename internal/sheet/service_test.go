package sheet_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/wastehunter/internal/game/action"
	"github.com/cory-johannsen/wastehunter/internal/game/character"
	"github.com/cory-johannsen/wastehunter/internal/game/dice"
	"github.com/cory-johannsen/wastehunter/internal/game/inventory"
	"github.com/cory-johannsen/wastehunter/internal/game/ledger"
	"github.com/cory-johannsen/wastehunter/internal/sheet"
	mocksheet "github.com/cory-johannsen/wastehunter/internal/sheet/mock"
)

type fixture struct {
	store     *mocksheet.MockStore
	evaluator *mocksheet.MockEvaluator
	notifier  *mocksheet.MockNotifier
	logs      *observer.ObservedLogs
	svc       *sheet.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	core, logs := observer.New(zap.DebugLevel)
	f := &fixture{
		store:     mocksheet.NewMockStore(ctrl),
		evaluator: mocksheet.NewMockEvaluator(ctrl),
		notifier:  mocksheet.NewMockNotifier(ctrl),
		logs:      logs,
	}
	f.svc = sheet.NewService(f.store, action.NewDispatcher(action.Options{}), f.evaluator, f.notifier, zap.New(core))
	return f
}

func rook() *character.Entity {
	return &character.Entity{
		ID:        "h1",
		Name:      "Rook",
		Kind:      character.KindCharacter,
		Abilities: map[string]int{"QCK": 6, "STR": 6},
		Skills:    map[string]character.Skill{"palming": {Mod: 1}},
		Resources: map[string]ledger.Resource{
			character.ResourceAP: {Current: 2, Max: 10},
			"smallcarry":         {Current: 1, Max: 4},
		},
		Items: []*inventory.Item{
			{ID: "glock", Name: "Glock 22", Category: inventory.CategoryWeapon, APCost: 3, AmmoType: "glock", Charges: ledger.Resource{Current: 0, Max: 15}},
			{ID: "mag", Name: "Glock Magazine", Category: inventory.CategoryMagazine, AmmoType: "glock", CarrySlot: "smallcarry", Quantity: 0},
		},
	}
}

func TestHandle_DisarmOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	result := dice.PoolResult{Spec: dice.Standard(7), Dice: []int{4, 1, 2, 5, 3, 3, 6, 1}, Successes: 3}

	gomock.InOrder(
		f.store.EXPECT().Load(ctx, "h1").Return(rook(), nil),
		f.store.EXPECT().Update(ctx, "h1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, p character.Patch) error {
			assert.Equal(t, ledger.Resource{Current: -1, Max: 10}, p.Resources[character.ResourceAP])
			return nil
		}),
		f.evaluator.EXPECT().Evaluate(ctx, dice.Standard(7), "Disarm").Return(result, nil),
		f.notifier.EXPECT().Notify(ctx, "h1", gomock.Any()).Do(func(_ context.Context, _ string, n action.Notification) {
			assert.Equal(t, action.LevelInfo, n.Level)
			assert.Contains(t, n.Message, "Disarm: 7d6x6cs>3")
		}),
		f.notifier.EXPECT().Notify(ctx, "h1", gomock.Any()).Do(func(_ context.Context, _ string, n action.Notification) {
			assert.Equal(t, action.LevelWarn, n.Level)
			assert.Equal(t, "Negative AP Detected: Alis may now eat your dice.", n.Message)
		}),
	)

	report, err := f.svc.Handle(ctx, action.Command{Kind: action.KindAction, EntityID: "h1", Action: "disarm"})
	require.NoError(t, err)
	assert.True(t, report.Persisted)
	require.Len(t, report.Rolls, 1)
	assert.Equal(t, 3, report.Rolls[0].Result.Successes)
	assert.Equal(t, 1, f.logs.FilterMessage("handled command").Len())
}

func TestHandle_MissingCompanionIsNotifiedAndNothingPersisted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.EXPECT().Load(ctx, "h1").Return(rook(), nil)
	f.notifier.EXPECT().Notify(ctx, "h1", action.Notification{
		Level:   action.LevelError,
		Message: "Rook does not have enough Glock Magazine remaining.",
	})

	_, err := f.svc.Handle(ctx, action.Command{Kind: action.KindMagazineDrop, EntityID: "h1", ItemID: "glock"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrMissingCompanion))
	assert.Equal(t, 1, f.logs.FilterMessage("command failed").Len())
}

func TestHandle_PersistFailureIsNotRetriedAndSkipsRolls(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("connection reset")

	f.store.EXPECT().Load(ctx, "h1").Return(rook(), nil)
	f.store.EXPECT().Update(ctx, "h1", gomock.Any()).Return(boom).Times(1)
	f.notifier.EXPECT().Notify(ctx, "h1", action.Notification{Level: action.LevelError, Message: "connection reset"})

	report, err := f.svc.Handle(ctx, action.Command{Kind: action.KindAction, EntityID: "h1", Action: "disarm"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, report.Persisted)
	assert.Empty(t, report.Rolls)
}

func TestHandle_LoadFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	notFound := errors.New("entity not found")

	f.store.EXPECT().Load(ctx, "ghost").Return(nil, notFound)
	f.notifier.EXPECT().Notify(ctx, "ghost", gomock.Any())

	_, err := f.svc.Handle(ctx, action.Command{Kind: action.KindRest, EntityID: "ghost"})
	assert.True(t, errors.Is(err, notFound))
}

func TestHandle_NoChangeSkipsUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := rook()
	e.Resources[character.ResourceStamina] = ledger.Resource{Current: 5, Max: 5}

	f.store.EXPECT().Load(ctx, "h1").Return(e, nil)

	report, err := f.svc.Handle(ctx, action.Command{Kind: action.KindStaminaReset, EntityID: "h1"})
	require.NoError(t, err)
	assert.False(t, report.Persisted)
}

func TestHandle_RollFailureAfterPersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.EXPECT().Load(ctx, "h1").Return(rook(), nil)
	f.store.EXPECT().Update(ctx, "h1", gomock.Any()).Return(nil)
	f.evaluator.EXPECT().Evaluate(ctx, gomock.Any(), "Disarm").Return(dice.PoolResult{}, errors.New("dice jammed"))
	f.notifier.EXPECT().Notify(ctx, "h1", gomock.Any())

	report, err := f.svc.Handle(ctx, action.Command{Kind: action.KindAction, EntityID: "h1", Action: "disarm"})
	require.Error(t, err)
	assert.True(t, report.Persisted)
}

func TestHandle_RequiresEntityID(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Handle(context.Background(), action.Command{Kind: action.KindRest})
	assert.Error(t, err)
}

// serialStore records how many Handle calls are inside the store at once.
type serialStore struct {
	mu      sync.Mutex
	entity  *character.Entity
	active  int
	maxSeen int
}

func (s *serialStore) enter() {
	s.mu.Lock()
	s.active++
	if s.active > s.maxSeen {
		s.maxSeen = s.active
	}
	s.mu.Unlock()
}

func (s *serialStore) leave() {
	s.mu.Lock()
	s.active--
	s.mu.Unlock()
}

func (s *serialStore) Load(_ context.Context, _ string) (*character.Entity, error) {
	s.enter()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entity.Clone(), nil
}

func (s *serialStore) Update(_ context.Context, _ string, p character.Patch) error {
	defer s.leave()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entity.Apply(p)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, action.Notification) {}

func TestHandle_SerializesPerEntity(t *testing.T) {
	store := &serialStore{entity: rook()}
	store.entity.Resources[character.ResourceAP] = ledger.Resource{Current: 100, Max: 100}
	svc := sheet.NewService(store, action.NewDispatcher(action.Options{}), dice.NewLoggedRoller(dice.NewSeededSource(1), zap.NewNop()), nopNotifier{}, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Handle(context.Background(), action.Command{Kind: action.KindAction, EntityID: "h1", Action: "reposition"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.maxSeen)
	assert.Equal(t, 80, store.entity.Resources[character.ResourceAP].Current)
}

func TestUserMessage(t *testing.T) {
	err := fmt.Errorf("magazine_drop: %w", &ledger.InvalidReferenceError{Kind: "item", ID: "x"})
	assert.Equal(t, `unknown item "x"`, sheet.UserMessage(err))
	assert.Equal(t, "plain", sheet.UserMessage(errors.New("plain")))
}
