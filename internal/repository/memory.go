package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/himakar4/movie-booking-system/internal/domain"
	"github.com/shopspring/decimal"
)

// MemoryStore keeps shows, occupancy and bookings in process. It serves as
// ShowRepository, SeatStore and BookingRepository at once.
//
// Each show publishes an immutable snapshot of its occupancy and bookings
// through an atomic pointer. Writers build the next snapshot under the show's
// mutex, so readers see either all of a commit or none of it without locking.
type MemoryStore struct {
	mu    sync.RWMutex
	shows map[int]*memoryShow

	// booking id -> show id
	index  sync.Map
	nextID atomic.Int64
	now    func() time.Time
}

type memoryShow struct {
	show     atomic.Pointer[domain.Show]
	mu       sync.Mutex
	snapshot atomic.Pointer[showSnapshot]
}

type showSnapshot struct {
	occupied domain.SeatSet
	// ascending by ID, shared append-only with older snapshots
	bookings []*domain.Booking
}

func NewMemoryStore(shows ...*domain.Show) *MemoryStore {
	s := &MemoryStore{
		shows: make(map[int]*memoryShow),
		now:   time.Now,
	}

	for _, show := range shows {
		s.AddShow(show)
	}

	return s
}

// AddShow registers show in the catalog. Re-adding an existing show replaces
// its details and keeps its bookings.
func (s *MemoryStore) AddShow(show *domain.Show) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *show

	if existing, ok := s.shows[show.ID]; ok {
		existing.show.Store(&c)
		return
	}

	ms := &memoryShow{}
	ms.show.Store(&c)
	ms.snapshot.Store(&showSnapshot{occupied: domain.NewSeatSet()})
	s.shows[show.ID] = ms
}

func (s *MemoryStore) lookup(showID int) (*memoryShow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ms, ok := s.shows[showID]
	return ms, ok
}

func (s *MemoryStore) GetById(ctx context.Context, id int) (*domain.Show, error) {
	ms, ok := s.lookup(id)
	if !ok {
		return nil, domain.ErrShowNotFound
	}

	show := *ms.show.Load()
	return &show, nil
}

func (s *MemoryStore) OccupiedSeats(ctx context.Context, showID int) (domain.SeatSet, error) {
	ms, ok := s.lookup(showID)
	if !ok {
		return domain.SeatSet{}, domain.ErrShowNotFound
	}

	return ms.snapshot.Load().occupied, nil
}

func (s *MemoryStore) InShowTx(ctx context.Context, showID int, fn func(tx domain.ReservationTx) error) error {
	ms, ok := s.lookup(showID)
	if !ok {
		return domain.ErrShowNotFound
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryTx{store: s, base: ms.snapshot.Load(), show: ms.show.Load()}

	err := fn(tx)
	if err != nil {
		return err
	}

	if tx.booking == nil {
		return nil
	}

	// Older snapshots only see their own prefix of the shared array.
	next := &showSnapshot{
		occupied: tx.base.occupied.With(tx.staged...),
		bookings: append(tx.base.bookings, tx.booking),
	}
	ms.snapshot.Store(next)
	s.index.Store(tx.booking.ID, showID)

	return nil
}

type memoryTx struct {
	store   *MemoryStore
	base    *showSnapshot
	show    *domain.Show
	staged  []int
	booking *domain.Booking
}

func (t *memoryTx) OccupiedSeats(ctx context.Context) (domain.SeatSet, error) {
	return t.base.occupied.With(t.staged...), nil
}

func (t *memoryTx) TryReserve(ctx context.Context, seats []int) error {
	if err := domain.CheckSeatNumbers(t.show.Capacity, seats); err != nil {
		return err
	}

	occupied := t.base.occupied.With(t.staged...)

	if overlap := occupied.Intersect(seats); len(overlap) > 0 {
		return &domain.SeatConflictError{Seats: overlap}
	}

	t.staged = append(t.staged, seats...)
	return nil
}

func (t *memoryTx) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	booking.ID = int(t.store.nextID.Add(1))
	booking.Reference = uuid.New()
	booking.CreatedAt = t.store.now().UTC()
	booking.Show = t.show.Summary()

	t.booking = cloneBooking(booking)
	return nil
}

func (s *MemoryStore) GetBookingById(ctx context.Context, id int) (*domain.Booking, error) {
	v, ok := s.index.Load(id)
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	ms, ok := s.lookup(v.(int))
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	bookings := ms.snapshot.Load().bookings
	i, found := slices.BinarySearchFunc(bookings, id, func(b *domain.Booking, id int) int {
		return cmp.Compare(b.ID, id)
	})
	if !found {
		return nil, domain.ErrRecordNotFound
	}

	booking := cloneBooking(bookings[i])
	booking.Show = ms.show.Load().Summary()

	return booking, nil
}

func (s *MemoryStore) GetBookingsByUserId(
	ctx context.Context,
	userId int,
	pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error) {

	s.mu.RLock()
	shows := make([]*memoryShow, 0, len(s.shows))
	for _, ms := range s.shows {
		shows = append(shows, ms)
	}
	s.mu.RUnlock()

	var matched []*domain.Booking
	for _, ms := range shows {
		summary := ms.show.Load().Summary()
		for _, b := range ms.snapshot.Load().bookings {
			if b.UserID == userId {
				c := cloneBooking(b)
				c.Show = summary
				matched = append(matched, c)
			}
		}
	}

	slices.SortFunc(matched, func(a, b *domain.Booking) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	bookings := make([]domain.Booking, 0, pagination.Limit())
	start := min(pagination.Offset(), len(matched))
	end := min(start+pagination.Limit(), len(matched))

	for _, b := range matched[start:end] {
		bookings = append(bookings, *b)
	}

	return bookings, pagination.Metadata(len(matched)), nil
}

// Bookings adapts the store to domain.BookingRepository.
func (s *MemoryStore) Bookings() domain.BookingRepository {
	return memoryBookings{s}
}

type memoryBookings struct {
	store *MemoryStore
}

func (m memoryBookings) GetById(ctx context.Context, id int) (*domain.Booking, error) {
	return m.store.GetBookingById(ctx, id)
}

func (m memoryBookings) GetByUserId(
	ctx context.Context,
	userId int,
	pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error) {

	return m.store.GetBookingsByUserId(ctx, userId, pagination)
}

func cloneBooking(b *domain.Booking) *domain.Booking {
	c := *b
	c.Seats = slices.Clone(b.Seats)
	return &c
}

// DemoShows is the catalog served when running without a database.
func DemoShows(now time.Time) []*domain.Show {
	start := now.Truncate(time.Hour).Add(24 * time.Hour).UTC()

	return []*domain.Show{
		{ID: 1, MovieTitle: "Inception", CinemaName: "PVR Phoenix", StartTime: start, Capacity: 50, PricePerSeat: decimal.NewFromInt(150)},
		{ID: 2, MovieTitle: "Interstellar", CinemaName: "INOX Forum", StartTime: start.Add(3 * time.Hour), Capacity: 40, PricePerSeat: decimal.NewFromInt(200)},
		{ID: 3, MovieTitle: "The Dark Knight", CinemaName: "Cinepolis Nexus", StartTime: start.Add(6 * time.Hour), Capacity: 60, PricePerSeat: decimal.NewFromInt(180)},
	}
}
