package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	BookingCreate   http.HandlerFunc
	BookingStart    http.HandlerFunc
	BookingGet      http.HandlerFunc
	BookingExtend   http.HandlerFunc
	BookingStop     http.HandlerFunc
	BookingComplete http.HandlerFunc
	BookingLive     http.HandlerFunc

	ChargerCreate         http.HandlerFunc
	ChargerList           http.HandlerFunc
	ChargerGet            http.HandlerFunc
	ChargerByHost         http.HandlerFunc
	ChargerBook           http.HandlerFunc
	ChargerManualBlock    http.HandlerFunc
	ChargerConfirmUnblock http.HandlerFunc
	ChargerConfirmBlock   http.HandlerFunc

	OTPGenerate http.HandlerFunc
	OTPVerify   http.HandlerFunc

	Health http.HandlerFunc
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /bookings", routes.BookingCreate)
	mux.Handle("POST /bookings/complete", routes.BookingComplete)
	mux.Handle("POST /bookings/{id}/start", routes.BookingStart)
	mux.Handle("GET /bookings/{id}", routes.BookingGet)
	mux.Handle("POST /bookings/{id}/extend", routes.BookingExtend)
	mux.Handle("POST /bookings/{id}/stop", routes.BookingStop)
	mux.Handle("GET /bookings/{id}/live", routes.BookingLive)

	mux.Handle("POST /chargers", routes.ChargerCreate)
	mux.Handle("GET /chargers", routes.ChargerList)
	mux.Handle("GET /chargers/{id}", routes.ChargerGet)
	mux.Handle("GET /chargers/host/{host}", routes.ChargerByHost)
	mux.Handle("POST /chargers/{id}/book", routes.ChargerBook)
	mux.Handle("POST /chargers/{id}/block", routes.ChargerManualBlock)
	mux.Handle("PUT /chargers/{id}/block", routes.ChargerConfirmBlock)
	mux.Handle("PUT /chargers/{id}/unblock", routes.ChargerConfirmUnblock)

	mux.Handle("POST /otp/{bookingId}/generate", routes.OTPGenerate)
	mux.Handle("POST /otp/{bookingId}/verify", routes.OTPVerify)

	mux.Handle("GET /health", routes.Health)

	return mux
}
