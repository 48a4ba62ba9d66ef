package payment

import (
	"fmt"

	"github.com/ariefcatur/go-rental-booking.git/internal/booking"
	"github.com/ariefcatur/go-rental-booking.git/internal/catalog"
	"github.com/ariefcatur/go-rental-booking.git/internal/inventory"
)

// ComputeAmount: total deterministik dalam rupiah. Item.Price sudah snapshot
// rate x qty; line ASET dikali durasi hari (ceil), line JASA flat.
// Integer murni — tidak ada float di jalur uang.
func ComputeAmount(b *booking.Booking) int64 {
	days := inventory.Window{Start: b.Start, End: b.End}.Days()
	var total int64
	for _, it := range b.Items {
		switch it.ItemType {
		case catalog.ItemAset:
			total += it.Price * days
		case catalog.ItemJasa:
			total += it.Price
		}
	}
	return total
}

// Reference: order_id gateway, deterministik per booking+attempt dan bebas
// collision (attempt monotonic, satu payment non-terminal per booking).
// Jauh di bawah limit 50 karakter gateway.
func Reference(bookingID string, attempt int) string {
	short := bookingID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("bk-%s-%d", short, attempt)
}
