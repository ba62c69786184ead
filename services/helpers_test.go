package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/yeremiapane/restaurant-ordering/database/dbtest"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
	"gorm.io/gorm"
)

func ctx() context.Context { return context.Background() }

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type published struct {
	Event string
	Data  interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []published
}

func (n *recordingNotifier) Publish(event string, data interface{}) {
	n.mu.Lock()
	n.events = append(n.events, published{Event: event, Data: data})
	n.mu.Unlock()
}

func (n *recordingNotifier) Events(name string) []published {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []published
	for _, e := range n.events {
		if e.Event == name {
			out = append(out, e)
		}
	}
	return out
}

// world is a single location with one table T001, a staff user and a small
// catalog: a burger with a required size choice and an optional sauce.
type world struct {
	t     *testing.T
	db    *gorm.DB
	clock *testClock
	bus   *recordingNotifier
	seed  *dbtest.Seeder

	location models.Location
	table    models.Table
	user     models.User

	burger    models.Product
	sizeType  models.OptionType
	small     models.ProductOption
	large     models.ProductOption
	sauceType models.OptionType
	ketchup   models.ProductOption

	registry   *SessionRegistry
	sweeper    *ExpirationSweeper
	duplicates *DuplicateResolver
	catalog    *CatalogResolver
	submission *OrderSubmission
	history    *OrderHistoryQuery
}

func newWorld(t *testing.T) *world {
	t.Helper()
	db := dbtest.New(t)
	w := &world{
		t:     t,
		db:    db,
		clock: newTestClock(),
		bus:   &recordingNotifier{},
		seed:  dbtest.Seed(t, db),
	}

	w.location = w.seed.Location("Downtown")
	w.table = w.seed.Table(w.location.ID, "T001")
	w.user = w.seed.User("waiter@example.com", "secret", models.RoleWaiter)

	w.burger = w.seed.Product("Burger", "25.00", true)
	w.seed.ProductAt(w.burger.ID, w.location.ID, true, nil)

	w.sizeType = w.seed.OptionType("Size", 1, dbtest.Ptr(1))
	w.seed.OptionTypeAt(w.sizeType.ID, w.location.ID, true)
	w.seed.LinkOptionType(w.burger.ID, w.sizeType.ID)
	w.small = w.seed.Option(w.sizeType.ID, "Small", "0.00", true)
	w.large = w.seed.Option(w.sizeType.ID, "Large", "5.00", true)
	w.seed.OptionAt(w.small.ID, w.location.ID, true, nil)
	w.seed.OptionAt(w.large.ID, w.location.ID, true, nil)

	w.sauceType = w.seed.OptionType("Sauce", 0, nil)
	w.seed.OptionTypeAt(w.sauceType.ID, w.location.ID, true)
	w.seed.LinkOptionType(w.burger.ID, w.sauceType.ID)
	w.ketchup = w.seed.Option(w.sauceType.ID, "Ketchup", "0.50", true)
	w.seed.OptionAt(w.ketchup.ID, w.location.ID, true, nil)

	deps := Deps{DB: db, Logger: utils.NewDiscardLogger(), Clock: w.clock.Now, Notifier: w.bus}
	dir := NewGormDirectory()
	w.registry = NewSessionRegistry(deps, dir, SessionRegistryConfig{})
	w.sweeper = NewExpirationSweeper(deps)
	w.duplicates = NewDuplicateResolver(deps)
	w.catalog = NewCatalogResolver(db)
	w.submission = NewOrderSubmission(deps, w.registry, w.catalog, dir, nil)
	w.history = NewOrderHistoryQuery(db, w.registry)
	return w
}

func (w *world) openSession() *models.TableSession {
	w.t.Helper()
	s, err := w.registry.CreateSession(ctx(), w.table.ID, w.user.ID, 0)
	if err != nil {
		w.t.Fatalf("create session: %v", err)
	}
	return s
}

func (w *world) burgerOrder(token string, quantity int, optionIDs ...uint) SubmitOrderInput {
	return SubmitOrderInput{
		Token: token,
		Items: []OrderItemInput{{ProductID: w.burger.ID, Quantity: quantity, OptionIDs: optionIDs}},
	}
}

func (w *world) countOrders() int64 {
	w.t.Helper()
	var n int64
	if err := w.db.Model(&models.Order{}).Count(&n).Error; err != nil {
		w.t.Fatalf("count orders: %v", err)
	}
	return n
}
