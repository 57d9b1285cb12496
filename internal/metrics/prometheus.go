package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type prometheusObserver struct {
	logins   *prometheus.CounterVec
	refreshs *prometheus.CounterVec
	captchas *prometheus.CounterVec
	bookings *prometheus.CounterVec
}

var (
	loginCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roombook_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})
	refreshCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roombook_token_refreshes_total",
		Help: "Refresh token exchanges by result",
	}, []string{"result"})
	captchaCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roombook_captchas_issued_total",
		Help: "Captcha codes issued by purpose",
	}, []string{"purpose"})
	bookingCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roombook_booking_requests_total",
		Help: "Booking requests by result",
	}, []string{"result"})
)

func NewPrometheusObserver() Observer {
	return &prometheusObserver{
		logins:   loginCounter,
		refreshs: refreshCounter,
		captchas: captchaCounter,
		bookings: bookingCounter,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (p *prometheusObserver) RecordLogin(result string) {
	p.logins.WithLabelValues(result).Inc()
}

func (p *prometheusObserver) RecordRefresh(result string) {
	p.refreshs.WithLabelValues(result).Inc()
}

func (p *prometheusObserver) RecordCaptcha(purpose string) {
	p.captchas.WithLabelValues(purpose).Inc()
}

func (p *prometheusObserver) RecordBooking(result string) {
	p.bookings.WithLabelValues(result).Inc()
}
