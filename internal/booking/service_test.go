package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-rental-booking.git/internal/apperr"
	"github.com/ariefcatur/go-rental-booking.git/internal/auth"
	"github.com/ariefcatur/go-rental-booking.git/internal/cart"
	"github.com/ariefcatur/go-rental-booking.git/internal/catalog"
	"github.com/ariefcatur/go-rental-booking.git/internal/inventory"
	"github.com/ariefcatur/go-rental-booking.git/internal/notify"
	"github.com/ariefcatur/go-rental-booking.git/internal/user"
)

// fakeStore meniru semantik repo postgres: hold stok + insert + clear cart di
// bawah satu lock, transisi CAS, release stok saat reject/cancel.
type fakeStore struct {
	mu       sync.Mutex
	stock    map[string]int
	status   map[string]string
	bookings map[string]*Booking
	carts    *fakeCarts
}

func newFakeStore(carts *fakeCarts) *fakeStore {
	return &fakeStore{
		stock:    map[string]int{},
		status:   map[string]string{},
		bookings: map[string]*Booking{},
		carts:    carts,
	}
}

func (f *fakeStore) Create(ctx context.Context, b *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	w := inventory.Window{Start: b.Start, End: b.End}
	for _, it := range b.Items {
		if it.ItemType != catalog.ItemAset {
			continue
		}
		held := 0
		for _, ex := range f.bookings {
			if !ex.Status.HoldsStock() {
				continue
			}
			if !(inventory.Window{Start: ex.Start, End: ex.End}).Overlaps(w) {
				continue
			}
			for _, exIt := range ex.Items {
				if exIt.AssetID == it.AssetID {
					held += exIt.Qty
				}
			}
		}
		if err := inventory.Evaluate(f.status[it.AssetID] == catalog.AssetTersedia, f.stock[it.AssetID], held, it.Qty); err != nil {
			return err
		}
	}
	for _, it := range b.Items {
		if it.ItemType == catalog.ItemAset {
			f.stock[it.AssetID] -= it.Qty
		}
	}

	cp := *b
	f.bookings[b.ID] = &cp
	_ = f.carts.ClearUser(ctx, b.UserID)
	return nil
}

func (f *fakeStore) Get(_ context.Context, id string) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperr.NotFound("BOOKING_NOT_FOUND", "booking tidak ditemukan")
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID string, status Status, page, limit int) ([]Booking, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if b.UserID == userID && (status == "" || b.Status == status) {
			out = append(out, *b)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) Transition(_ context.Context, id string, from, to Status, opt TransitionOpts) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return apperr.NotFound("BOOKING_NOT_FOUND", "booking tidak ditemukan")
	}
	if b.Status != from {
		return apperr.Conflict("INVALID_TRANSITION", "status booking sudah berubah")
	}
	b.Status = to
	if opt.ApprovedBy != "" {
		b.ApprovedBy = opt.ApprovedBy
		b.ApprovedAt = opt.ApprovedAt
	}
	if opt.Notes != "" {
		b.Notes = opt.Notes
	}
	if opt.ReleaseStock {
		for _, it := range b.Items {
			if it.ItemType == catalog.ItemAset {
				f.stock[it.AssetID] += it.Qty
			}
		}
	}
	return nil
}

type fakeCarts struct {
	mu    sync.Mutex
	lines map[string][]cart.Line // per user
}

func newFakeCarts() *fakeCarts { return &fakeCarts{lines: map[string][]cart.Line{}} }

func (f *fakeCarts) put(userID string, ls ...cart.Line) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines[userID] = append(f.lines[userID], ls...)
}

func (f *fakeCarts) ListByUser(_ context.Context, userID string) ([]cart.Line, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]cart.Line(nil), f.lines[userID]...), nil
}

func (f *fakeCarts) Get(context.Context, string) (*cart.Line, error) { return nil, nil }
func (f *fakeCarts) Find(context.Context, string, catalog.ItemType, string) (*cart.Line, error) {
	return nil, nil
}
func (f *fakeCarts) Insert(context.Context, *cart.Line) error             { return nil }
func (f *fakeCarts) UpdateQty(context.Context, string, int, int64) error  { return nil }
func (f *fakeCarts) Delete(context.Context, string) error                 { return nil }

func (f *fakeCarts) ClearUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.lines, userID)
	return nil
}

type fakeUsers struct{ admins []user.User }

func (f *fakeUsers) Get(_ context.Context, id string) (*user.User, error) {
	return &user.User{ID: id, Name: "Tester", Status: user.StatusAktif}, nil
}

func (f *fakeUsers) ListActiveByRole(_ context.Context, _ ...auth.Role) ([]user.User, error) {
	return f.admins, nil
}

type sentNote struct {
	UserID string
	Title  string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNote
}

func (f *fakeNotifier) Send(_ context.Context, userID string, _ notify.Type, title, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNote{UserID: userID, Title: title})
}

func (f *fakeNotifier) titles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, n := range f.sent {
		out = append(out, n.Title)
	}
	return out
}

type fixture struct {
	svc   *Service
	store *fakeStore
	carts *fakeCarts
	notif *fakeNotifier
}

func newFixture() *fixture {
	carts := newFakeCarts()
	store := newFakeStore(carts)
	notif := &fakeNotifier{}
	users := &fakeUsers{admins: []user.User{{ID: "admin-1", Role: auth.RoleAdmin}}}
	return &fixture{
		svc:   NewService(store, carts, users, notif, zap.NewNop()),
		store: store,
		carts: carts,
		notif: notif,
	}
}

func assetLine(userID, assetID string, qty int, price int64) cart.Line {
	return cart.Line{
		ID: uuid.NewString(), UserID: userID,
		ItemType: catalog.ItemAset, AssetID: assetID,
		Qty: qty, Price: price,
	}
}

var (
	start = time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	end   = start.AddDate(0, 0, 3)
)

func TestCheckoutHappyPath(t *testing.T) {
	fx := newFixture()
	fx.store.stock["kamera"] = 2
	fx.store.status["kamera"] = catalog.AssetTersedia
	fx.carts.put("u1",
		assetLine("u1", "kamera", 1, 100000),
		cart.Line{ID: uuid.NewString(), UserID: "u1", ItemType: catalog.ItemJasa, ServiceID: "editing", Qty: 1, Price: 50000},
	)

	res, err := fx.svc.Checkout(context.Background(), auth.Identity{UserID: "u1", Role: auth.RolePeminjam},
		CheckoutInput{Start: start, End: end})
	require.NoError(t, err)

	assert.Equal(t, StatusMenunggu, res.Booking.Status)
	assert.Equal(t, TypeCampur, res.Booking.Type)
	assert.Equal(t, int64(150000), res.TotalPrice)
	assert.Equal(t, 1, fx.store.stock["kamera"], "stok di-hold saat checkout")

	lines, _ := fx.carts.ListByUser(context.Background(), "u1")
	assert.Empty(t, lines, "cart dikosongkan atomik bersama create")

	assert.Contains(t, fx.notif.titles(), "Booking Baru Masuk")
	assert.Contains(t, fx.notif.titles(), "Booking Anda Berhasil Diajukan")
}

func TestCheckoutValidatesWindowBeforeMutation(t *testing.T) {
	fx := newFixture()
	fx.store.stock["kamera"] = 2
	fx.store.status["kamera"] = catalog.AssetTersedia
	fx.carts.put("u1", assetLine("u1", "kamera", 1, 100000))
	id := auth.Identity{UserID: "u1", Role: auth.RolePeminjam}

	_, err := fx.svc.Checkout(context.Background(), id, CheckoutInput{})
	assert.Equal(t, "MISSING_WINDOW", apperr.CodeOf(err))

	_, err = fx.svc.Checkout(context.Background(), id, CheckoutInput{Start: end, End: start})
	assert.Equal(t, "INVALID_WINDOW", apperr.CodeOf(err))

	// tidak ada mutasi: cart utuh, stok utuh
	lines, _ := fx.carts.ListByUser(context.Background(), "u1")
	assert.Len(t, lines, 1)
	assert.Equal(t, 2, fx.store.stock["kamera"])
}

func TestCheckoutEmptyCart(t *testing.T) {
	fx := newFixture()
	_, err := fx.svc.Checkout(context.Background(), auth.Identity{UserID: "u1", Role: auth.RolePeminjam},
		CheckoutInput{Start: start, End: end})
	assert.Equal(t, "EMPTY_CART", apperr.CodeOf(err))
}

// Properti inti reservation engine: stok 1, N checkout paralel untuk window
// yang sama -> tepat satu sukses.
func TestConcurrentCheckoutExactlyOneSucceeds(t *testing.T) {
	fx := newFixture()
	fx.store.stock["kamera"] = 1
	fx.store.status["kamera"] = catalog.AssetTersedia

	const n = 8
	users := make([]string, n)
	for i := range users {
		users[i] = uuid.NewString()
		fx.carts.put(users[i], assetLine(users[i], "kamera", 1, 100000))
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.svc.Checkout(context.Background(),
				auth.Identity{UserID: users[i], Role: auth.RolePeminjam},
				CheckoutInput{Start: start, End: end})
		}(i)
	}
	wg.Wait()

	success := 0
	for _, err := range errs {
		if err == nil {
			success++
		} else {
			assert.True(t, apperr.IsKind(err, apperr.KindConflict), "gagal harus Conflict, dapat %v", err)
		}
	}
	assert.Equal(t, 1, success)
	assert.Equal(t, 0, fx.store.stock["kamera"])
}

// Skenario stok 2: booking qty 2 menyerap semua stok; qty 1 overlap ditolak;
// setelah cancel, stok kembali dan retry sukses.
func TestCancelReleasesStockForRetry(t *testing.T) {
	fx := newFixture()
	fx.store.stock["kamera"] = 2
	fx.store.status["kamera"] = catalog.AssetTersedia
	ctx := context.Background()
	idA := auth.Identity{UserID: "userA", Role: auth.RolePeminjam}
	idB := auth.Identity{UserID: "userB", Role: auth.RolePeminjam}

	fx.carts.put("userA", assetLine("userA", "kamera", 2, 200000))
	resA, err := fx.svc.Checkout(ctx, idA, CheckoutInput{Start: start, End: end})
	require.NoError(t, err)

	fx.carts.put("userB", assetLine("userB", "kamera", 1, 100000))
	_, err = fx.svc.Checkout(ctx, idB, CheckoutInput{Start: start, End: end})
	assert.Equal(t, "INSUFFICIENT_STOCK", apperr.CodeOf(err))

	_, err = fx.svc.Cancel(ctx, idA, resA.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fx.store.stock["kamera"])

	fx.carts.put("userB", assetLine("userB", "kamera", 1, 100000))
	_, err = fx.svc.Checkout(ctx, idB, CheckoutInput{Start: start, End: end})
	assert.NoError(t, err)
}

func TestApprove(t *testing.T) {
	fx := newFixture()
	fx.store.stock["kamera"] = 1
	fx.store.status["kamera"] = catalog.AssetTersedia
	ctx := context.Background()
	owner := auth.Identity{UserID: "u1", Role: auth.RolePeminjam}
	admin := auth.Identity{UserID: "admin-1", Role: auth.RoleAdmin}

	fx.carts.put("u1", assetLine("u1", "kamera", 1, 100000))
	res, err := fx.svc.Checkout(ctx, owner, CheckoutInput{Start: start, End: end})
	require.NoError(t, err)

	// peminjam tidak boleh approve
	_, err = fx.svc.Approve(ctx, owner, res.Booking.ID, "")
	assert.Equal(t, "FORBIDDEN", apperr.CodeOf(err))

	b, err := fx.svc.Approve(ctx, admin, res.Booking.ID, "ok")
	require.NoError(t, err)
	assert.Equal(t, StatusDikonfirmasi, b.Status)
	assert.Equal(t, "admin-1", b.ApprovedBy)
	require.NotNil(t, b.ApprovedAt)
	// approval tidak menyentuh stok — sudah dipegang sejak MENUNGGU
	assert.Equal(t, 0, fx.store.stock["kamera"])

	// approve kedua kali: sudah bukan MENUNGGU
	_, err = fx.svc.Approve(ctx, admin, res.Booking.ID, "")
	assert.Equal(t, "INVALID_TRANSITION", apperr.CodeOf(err))

	assert.Contains(t, fx.notif.titles(), "Booking Disetujui")
}

func TestRejectReleasesStock(t *testing.T) {
	fx := newFixture()
	fx.store.stock["kamera"] = 1
	fx.store.status["kamera"] = catalog.AssetTersedia
	ctx := context.Background()
	admin := auth.Identity{UserID: "admin-1", Role: auth.RoleAdmin}

	fx.carts.put("u1", assetLine("u1", "kamera", 1, 100000))
	res, err := fx.svc.Checkout(ctx, auth.Identity{UserID: "u1", Role: auth.RolePeminjam},
		CheckoutInput{Start: start, End: end})
	require.NoError(t, err)
	assert.Equal(t, 0, fx.store.stock["kamera"])

	b, err := fx.svc.Reject(ctx, admin, res.Booking.ID, "jadwal bentrok")
	require.NoError(t, err)
	assert.Equal(t, StatusDitolak, b.Status)
	assert.Equal(t, 1, fx.store.stock["kamera"], "reject melepas hold")

	assert.Contains(t, fx.notif.titles(), "Booking Ditolak")
}

func TestCancelTwiceDoesNotDoubleRelease(t *testing.T) {
	fx := newFixture()
	fx.store.stock["kamera"] = 1
	fx.store.status["kamera"] = catalog.AssetTersedia
	ctx := context.Background()
	owner := auth.Identity{UserID: "u1", Role: auth.RolePeminjam}

	fx.carts.put("u1", assetLine("u1", "kamera", 1, 100000))
	res, err := fx.svc.Checkout(ctx, owner, CheckoutInput{Start: start, End: end})
	require.NoError(t, err)

	_, err = fx.svc.Cancel(ctx, owner, res.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fx.store.stock["kamera"])

	_, err = fx.svc.Cancel(ctx, owner, res.Booking.ID)
	assert.Equal(t, "INVALID_TRANSITION", apperr.CodeOf(err))
	assert.Equal(t, 1, fx.store.stock["kamera"], "stok tidak dikembalikan dua kali")
}

func TestCancelOnlyOwner(t *testing.T) {
	fx := newFixture()
	fx.store.stock["kamera"] = 1
	fx.store.status["kamera"] = catalog.AssetTersedia
	ctx := context.Background()

	fx.carts.put("u1", assetLine("u1", "kamera", 1, 100000))
	res, err := fx.svc.Checkout(ctx, auth.Identity{UserID: "u1", Role: auth.RolePeminjam},
		CheckoutInput{Start: start, End: end})
	require.NoError(t, err)

	_, err = fx.svc.Cancel(ctx, auth.Identity{UserID: "u2", Role: auth.RolePeminjam}, res.Booking.ID)
	assert.Equal(t, "BOOKING_NOT_FOUND", apperr.CodeOf(err), "booking orang lain tidak boleh bocor eksistensinya")
}

func TestGetVisibility(t *testing.T) {
	fx := newFixture()
	fx.store.stock["kamera"] = 1
	fx.store.status["kamera"] = catalog.AssetTersedia
	ctx := context.Background()

	fx.carts.put("u1", assetLine("u1", "kamera", 1, 100000))
	res, err := fx.svc.Checkout(ctx, auth.Identity{UserID: "u1", Role: auth.RolePeminjam},
		CheckoutInput{Start: start, End: end})
	require.NoError(t, err)

	_, err = fx.svc.Get(ctx, auth.Identity{UserID: "u1", Role: auth.RolePeminjam}, res.Booking.ID)
	assert.NoError(t, err)

	_, err = fx.svc.Get(ctx, auth.Identity{UserID: "admin-1", Role: auth.RoleAdmin}, res.Booking.ID)
	assert.NoError(t, err)

	_, err = fx.svc.Get(ctx, auth.Identity{UserID: "u2", Role: auth.RolePeminjam}, res.Booking.ID)
	assert.Equal(t, "BOOKING_NOT_FOUND", apperr.CodeOf(err))
}

func TestHoldReducesPhysicalStockAcrossWindows(t *testing.T) {
	fx := newFixture()
	fx.store.stock["kamera"] = 1
	fx.store.status["kamera"] = catalog.AssetTersedia
	ctx := context.Background()

	fx.carts.put("u1", assetLine("u1", "kamera", 1, 100000))
	_, err := fx.svc.Checkout(ctx, auth.Identity{UserID: "u1", Role: auth.RolePeminjam},
		CheckoutInput{Start: start, End: end})
	require.NoError(t, err)

	// Window jauh setelahnya: stok fisik sudah 0 karena hold model decrement,
	// jadi tetap tertolak sampai hold dilepas. Ini memang konservatif.
	fx.carts.put("u2", assetLine("u2", "kamera", 1, 100000))
	_, err = fx.svc.Checkout(ctx, auth.Identity{UserID: "u2", Role: auth.RolePeminjam},
		CheckoutInput{Start: end.AddDate(0, 0, 7), End: end.AddDate(0, 0, 10)})
	assert.Equal(t, "INSUFFICIENT_STOCK", apperr.CodeOf(err))
}
