package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle holds every HTTP entry point the router wires up.
type HandlerBundle struct {
	// Availability and slot rules.
	GetAvailability gin.HandlerFunc
	SaveSlotRules   gin.HandlerFunc
	GetSlotRules    gin.HandlerFunc

	// Bookings.
	CreateBooking   gin.HandlerFunc
	ListBookings    gin.HandlerFunc
	GetBooking      gin.HandlerFunc
	ConfirmPayment  gin.HandlerFunc
	CancelBooking   gin.HandlerFunc
	CompleteBooking gin.HandlerFunc

	// Payments.
	CreatePaymentOrder gin.HandlerFunc

	// Wallet.
	GetWallet        gin.HandlerFunc
	ListTransactions gin.HandlerFunc
	TopUpWallet      gin.HandlerFunc

	// Admin.
	AdminHandler *AdminHandler
}

// NewHandlerBundle assembles the bundle from the per-area handlers.
func NewHandlerBundle(bh *BookingHandler, ah *AvailabilityHandler, wh *WalletHandler, ph *PaymentHandler, adm *AdminHandler) *HandlerBundle {
	return &HandlerBundle{
		GetAvailability: ah.GetAvailability,
		SaveSlotRules:   ah.SaveSlotRules,
		GetSlotRules:    ah.GetSlotRules,

		CreateBooking:   bh.CreateBooking,
		ListBookings:    bh.ListBookings,
		GetBooking:      bh.GetBooking,
		ConfirmPayment:  bh.ConfirmPayment,
		CancelBooking:   bh.CancelBooking,
		CompleteBooking: bh.CompleteBooking,

		CreatePaymentOrder: ph.CreateOrder,

		GetWallet:        wh.GetWallet,
		ListTransactions: wh.ListTransactions,
		TopUpWallet:      wh.TopUp,

		AdminHandler: adm,
	}
}
