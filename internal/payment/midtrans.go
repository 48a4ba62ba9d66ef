package payment

import (
	"context"
	"net/http"
	"strings"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/ariefcatur/go-rental-booking.git/internal/apperr"
)

// MidtransGateway: Snap untuk membuat checkout session, Core API untuk query
// status transaksi. Semua call dibungkus select ctx supaya timeout-nya ketat
// terlepas dari HTTP client internal SDK.
type MidtransGateway struct {
	snap      snap.Client
	core      coreapi.Client
	finishURL string
}

func NewMidtransGateway(serverKey string, production bool, frontendURL string) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	g := &MidtransGateway{finishURL: frontendURL + "/payment/success"}
	g.snap.New(serverKey, env)
	g.core.New(serverKey, env)
	return g
}

func enabledPayments(m Method) []snap.SnapPaymentType {
	switch m {
	case MethodQRIS:
		return []snap.SnapPaymentType{snap.SnapPaymentType("qris")}
	case MethodTransfer:
		return []snap.SnapPaymentType{snap.SnapPaymentType("bank_transfer")}
	default:
		return []snap.SnapPaymentType{snap.SnapPaymentType("qris"), snap.SnapPaymentType("bank_transfer")}
	}
}

func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "Customer", ""
	}
	parts := strings.SplitN(full, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func (g *MidtransGateway) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSession, error) {
	first, last := splitName(in.Customer.Name)
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  in.Reference,
			GrossAmt: in.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: first,
			LName: last,
			Email: in.Customer.Email,
			Phone: in.Customer.Phone,
		},
		EnabledPayments: enabledPayments(in.Method),
		Callbacks:       &snap.Callbacks{Finish: g.finishURL},
	}

	type result struct {
		resp *snap.Response
		err  *midtrans.Error
	}
	ch := make(chan result, 1)
	go func() {
		resp, err := g.snap.CreateTransaction(req)
		ch <- result{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		return &CheckoutSession{RedirectURL: r.resp.RedirectURL, Token: r.resp.Token}, nil
	}
}

func (g *MidtransGateway) QueryStatus(ctx context.Context, reference string) (*GatewayStatus, error) {
	type result struct {
		resp *coreapi.TransactionStatusResponse
		err  *midtrans.Error
	}
	ch := make(chan result, 1)
	go func() {
		resp, err := g.core.CheckTransaction(reference)
		ch <- result{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			if r.err.StatusCode == http.StatusNotFound {
				return nil, apperr.NotFound("TRANSACTION_NOT_FOUND", "transaksi belum dikenal gateway")
			}
			return nil, r.err
		}
		return &GatewayStatus{
			TransactionStatus: r.resp.TransactionStatus,
			FraudStatus:       r.resp.FraudStatus,
		}, nil
	}
}
