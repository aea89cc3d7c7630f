// Package session implements the poll/order sync controller: it mirrors one
// poll and its orders from the store into memory, keeps them fresh through
// live subscriptions, and exposes the mutations a participant or an
// administrator performs during an ordering session. Every failure surfaces
// as a notification; nothing here returns business errors to the caller.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"easyfood/internal/domain/order"
	"easyfood/internal/domain/poll"
	"easyfood/internal/domain/user"
	"easyfood/internal/metrics"
	"easyfood/internal/notify"
)

const unknownUserName = "Unknown user"

// State is a copy of the controller's view, safe to hand to a renderer.
type State struct {
	Poll          *poll.Poll    `json:"poll"`
	Orders        []order.Order `json:"orders"`
	UserOrder     *order.Order  `json:"user_order,omitempty"`
	Loading       bool          `json:"loading"`
	Submitting    bool          `json:"submitting"`
	OrderingEnded bool          `json:"ordering_ended"`
	TotalCost     float64       `json:"total_cost"`
}

type Config struct {
	PollID   string
	UserID   string
	Polls    poll.Repository
	Orders   order.Repository
	Users    user.Repository
	Notifier notify.Notifier
	Logger   *slog.Logger
	Now      func() time.Time
}

type Controller struct {
	pollID   string
	userID   string
	polls    poll.Repository
	orders   order.Repository
	users    user.Repository
	notifier notify.Notifier
	log      *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	poll       *poll.Poll
	orderList  []order.Order
	userOrder  *order.Order
	loading    bool
	submitting bool
	closed     bool
	deadline   deadlineTracker
	unsubs     []func()
	watchers   map[int64]chan State
	nextWatch  int64
}

func NewController(cfg Config) *Controller {
	c := &Controller{
		pollID:   cfg.PollID,
		userID:   cfg.UserID,
		polls:    cfg.Polls,
		orders:   cfg.Orders,
		users:    cfg.Users,
		notifier: cfg.Notifier,
		log:      cfg.Logger,
		now:      cfg.Now,
		loading:  true,
		watchers: make(map[int64]chan State),
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Start fetches the poll and the acting user's order, then opens the two
// live subscriptions. It no-ops when either identifier is missing. A deleted
// poll is reported through the notifier and results in no subscriptions;
// callers must check Snapshot().Poll themselves.
func (c *Controller) Start(ctx context.Context) error {
	if c.pollID == "" || c.userID == "" {
		return nil
	}

	p, err := c.polls.GetByID(ctx, c.pollID)
	if err != nil {
		if errors.Is(err, poll.ErrNotFound) {
			c.notify("Poll removed", "This poll has been removed by an administrator.", notify.SeverityError)
			return nil
		}
		c.log.Error("fetch poll", "poll_id", c.pollID, "err", err)
		return err
	}

	c.mu.Lock()
	c.poll = p
	c.mu.Unlock()

	if o, err := c.orders.GetUserOrder(ctx, c.pollID, c.userID); err == nil {
		c.mu.Lock()
		c.userOrder = o
		c.mu.Unlock()
	} else if !errors.Is(err, order.ErrNotFound) {
		c.log.Error("fetch user order", "poll_id", c.pollID, "user_id", c.userID, "err", err)
	}

	// ctx only bounds the fetches above. The subscriptions outlive the
	// request that opened the session and end at Close, so they must not
	// inherit the request's cancellation.
	subCtx := context.WithoutCancel(ctx)
	unsubOrders, err := c.orders.Subscribe(subCtx, c.pollID, c.onOrdersSnapshot)
	if err != nil {
		return err
	}
	unsubPoll, err := c.polls.Subscribe(subCtx, c.pollID, c.onPollSnapshot)
	if err != nil {
		unsubOrders()
		return err
	}

	c.mu.Lock()
	c.unsubs = append(c.unsubs, unsubOrders, unsubPoll)
	c.mu.Unlock()
	return nil
}

// Close cancels both subscriptions. No state update is observable once Close
// has returned.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsubs := c.unsubs
	c.unsubs = nil
	c.watchers = map[int64]chan State{}
	c.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// Snapshot returns a copy of the current state with the derived values
// recomputed against the wall clock.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Watch returns a channel receiving state snapshots after each change. Slow
// consumers only ever see the latest state. The cancel func releases the
// watcher.
func (c *Controller) Watch() (<-chan State, func()) {
	ch := make(chan State, 1)

	c.mu.Lock()
	id := c.nextWatch
	c.nextWatch++
	if !c.closed {
		c.watchers[id] = ch
	}
	ch <- c.stateLocked()
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		delete(c.watchers, id)
		c.mu.Unlock()
	}
	return ch, cancel
}

// SubmitOrder creates the acting user's order, or updates it in place when
// one already exists. After the ordering deadline it performs no write and
// reports a rejection.
func (c *Controller) SubmitOrder(ctx context.Context, dish, notes string, cost float64) {
	c.mu.Lock()
	if c.userID == "" || c.poll == nil {
		c.mu.Unlock()
		return
	}
	if c.poll.OrderingEnded(c.now()) {
		c.mu.Unlock()
		c.notify("Time is up", "Orders can no longer be placed, the ordering window has ended.", notify.SeverityError)
		return
	}
	existing := c.userOrder
	c.submitting = true
	st := c.stateLocked()
	c.mu.Unlock()
	c.broadcast(st)

	defer c.clearSubmitting()

	if existing != nil {
		c.updateOwnOrder(ctx, existing, dish, notes, cost)
		return
	}

	o := &order.Order{
		UserID:    c.userID,
		Dish:      dish,
		Notes:     notes,
		Cost:      cost,
		CreatedAt: c.now(),
	}
	err := c.orders.Create(ctx, c.pollID, o)
	if errors.Is(err, order.ErrExists) {
		// Lost a race against another submission of ours; fall back to
		// the update path.
		c.updateOwnOrder(ctx, &order.Order{UserID: c.userID}, dish, notes, cost)
		return
	}
	if err != nil {
		c.log.Error("create order", "poll_id", c.pollID, "user_id", c.userID, "err", err)
		c.notify("Error", "Could not submit your order. Please try again.", notify.SeverityError)
		return
	}

	c.setUserOrder(o)
	metrics.IncOrderSubmitted("created")
	c.notify("Order submitted", "Your order has been submitted.", notify.SeverityInfo)
}

func (c *Controller) updateOwnOrder(ctx context.Context, existing *order.Order, dish, notes string, cost float64) {
	upd := *existing
	upd.UserID = c.userID
	upd.Dish = dish
	upd.Notes = notes
	upd.Cost = cost
	upd.CreatedAt = c.now()
	upd.UserName = ""

	if err := c.orders.Update(ctx, c.pollID, &upd); err != nil {
		c.log.Error("update order", "poll_id", c.pollID, "user_id", c.userID, "err", err)
		c.notify("Error", "Could not update your order. Please try again.", notify.SeverityError)
		return
	}

	c.setUserOrder(&upd)
	metrics.IncOrderSubmitted("updated")
	c.notify("Order updated", "Your order has been updated.", notify.SeverityInfo)
}

// CloseOrdering stamps the poll's deadline to now. Authorization is the HTTP
// layer's concern, not checked here.
func (c *Controller) CloseOrdering(ctx context.Context) {
	c.mu.Lock()
	if c.userID == "" || c.poll == nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	now := c.now()
	if err := c.polls.SetOrderingEndsAt(ctx, c.pollID, now); err != nil {
		c.log.Error("close ordering", "poll_id", c.pollID, "err", err)
		c.notify("Error", "Could not close ordering.", notify.SeverityError)
		return
	}

	c.mu.Lock()
	if !c.closed && c.poll != nil {
		cp := *c.poll
		cp.OrderingEndsAt = &now
		c.poll = &cp
	}
	st := c.stateLocked()
	c.mu.Unlock()
	c.broadcast(st)

	c.notify("Ordering closed", "Order taking has been closed by the administrator.", notify.SeverityInfo)
}

// DeleteOrder removes the acting user's own order.
func (c *Controller) DeleteOrder(ctx context.Context) {
	c.mu.Lock()
	if c.userID == "" || c.userOrder == nil {
		c.mu.Unlock()
		return
	}
	c.submitting = true
	st := c.stateLocked()
	c.mu.Unlock()
	c.broadcast(st)

	defer c.clearSubmitting()

	if err := c.orders.Delete(ctx, c.pollID, c.userID); err != nil {
		c.log.Error("delete order", "poll_id", c.pollID, "user_id", c.userID, "err", err)
		c.notify("Error", "Could not delete your order. Please try again.", notify.SeverityError)
		return
	}

	c.setUserOrder(nil)
	c.notify("Order deleted", "Your order has been deleted.", notify.SeverityInfo)
}

// UpdateOrder is the administrative override: it merges updates over the
// order belonging to targetUserID and writes the result back. It silently
// no-ops when that user has no order in the poll.
func (c *Controller) UpdateOrder(ctx context.Context, targetUserID string, updates order.Update) {
	c.mu.Lock()
	if c.poll == nil {
		c.mu.Unlock()
		return
	}
	var target *order.Order
	for i := range c.orderList {
		if c.orderList[i].UserID == targetUserID {
			cp := c.orderList[i]
			target = &cp
			break
		}
	}
	c.mu.Unlock()

	if target == nil {
		// The local list may lag the store right after Start; read through
		// before concluding the order does not exist.
		o, err := c.orders.GetUserOrder(ctx, c.pollID, targetUserID)
		if err != nil {
			return
		}
		target = o
	}

	updates.Apply(target)
	target.UserName = ""

	if err := c.orders.Update(ctx, c.pollID, target); err != nil {
		c.log.Error("admin update order", "poll_id", c.pollID, "user_id", targetUserID, "err", err)
		c.notify("Error", "Could not update the order.", notify.SeverityError)
		return
	}

	c.notify("Order updated", "The order has been updated by an administrator.", notify.SeverityInfo)
}

// UpdateMenuURL rewrites the menu link of the poll's selected restaurant and
// persists the whole options collection, normalized.
func (c *Controller) UpdateMenuURL(ctx context.Context, url string) {
	c.mu.Lock()
	if c.poll == nil || c.poll.SelectedRestaurant == "" {
		c.mu.Unlock()
		return
	}
	opts := poll.WithMenuURL(c.poll.RestaurantOptions, c.poll.SelectedRestaurant, url)
	c.mu.Unlock()

	if err := c.polls.SetRestaurantOptions(ctx, c.pollID, opts); err != nil {
		c.log.Error("update menu url", "poll_id", c.pollID, "err", err)
		c.notify("Error", "Could not update the menu link.", notify.SeverityError)
		return
	}

	c.mu.Lock()
	if !c.closed && c.poll != nil {
		cp := *c.poll
		cp.RestaurantOptions = opts
		c.poll = &cp
	}
	st := c.stateLocked()
	c.mu.Unlock()
	c.broadcast(st)

	c.notify("Link updated", "The menu link has been updated.", notify.SeverityInfo)
}

func (c *Controller) onOrdersSnapshot(orders []order.Order) {
	enriched, ok := c.enrich(orders)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.orderList = enriched
	if ok {
		c.loading = false
	}
	st := c.stateLocked()
	c.mu.Unlock()
	c.broadcast(st)
}

func (c *Controller) onPollSnapshot(p *poll.Poll) {
	if p == nil {
		return
	}
	now := c.now()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	ev := c.deadline.observe(p.OrderingEndsAt, now)
	c.poll = p
	st := c.stateLocked()
	c.mu.Unlock()
	c.broadcast(st)

	if ev == eventOrderingClosed {
		c.notify("Ordering closed", "The administrator has closed order taking.", notify.SeverityError)
	}
}

// enrich joins the snapshot against a batched user-name lookup built from
// the snapshot's own user ids. The bool reports whether the lookup succeeded.
func (c *Controller) enrich(orders []order.Order) ([]order.Order, bool) {
	seen := make(map[string]struct{}, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.UserID]; !ok {
			seen[o.UserID] = struct{}{}
			ids = append(ids, o.UserID)
		}
	}

	names := map[string]string{}
	resolved := true
	if len(ids) > 0 {
		users, err := c.users.GetByIDs(context.Background(), ids)
		if err != nil {
			c.log.Error("resolve user names", "poll_id", c.pollID, "err", err)
			resolved = false
		} else {
			for _, u := range users {
				names[u.ID] = u.Name
			}
		}
	}

	out := make([]order.Order, len(orders))
	for i, o := range orders {
		if name, ok := names[o.UserID]; ok {
			o.UserName = name
		} else {
			o.UserName = unknownUserName
		}
		out[i] = o
	}
	return out, resolved
}

func (c *Controller) stateLocked() State {
	st := State{
		Orders:     c.orderList,
		Loading:    c.loading,
		Submitting: c.submitting,
		TotalCost:  order.TotalCost(c.orderList),
	}
	if c.poll != nil {
		cp := *c.poll
		st.Poll = &cp
		st.OrderingEnded = cp.OrderingEnded(c.now())
	}
	if c.userOrder != nil {
		cp := *c.userOrder
		st.UserOrder = &cp
	}
	return st
}

func (c *Controller) setUserOrder(o *order.Order) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.userOrder = o
	st := c.stateLocked()
	c.mu.Unlock()
	c.broadcast(st)
}

func (c *Controller) clearSubmitting() {
	c.mu.Lock()
	c.submitting = false
	st := c.stateLocked()
	c.mu.Unlock()
	c.broadcast(st)
}

func (c *Controller) broadcast(st State) {
	c.mu.Lock()
	watchers := make([]chan State, 0, len(c.watchers))
	for _, ch := range c.watchers {
		watchers = append(watchers, ch)
	}
	c.mu.Unlock()

	for _, ch := range watchers {
		select {
		case ch <- st:
		default:
			// Replace the undelivered snapshot with the newer one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}

func (c *Controller) notify(title, description string, severity notify.Severity) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(notify.Notification{
		Title:       title,
		Description: description,
		Severity:    severity,
	})
}
