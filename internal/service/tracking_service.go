package service

import (
	"context"
	"errors"
	"log"

	"github.com/Mauthecat/tienda-sub000/internal/backend"
	"github.com/Mauthecat/tienda-sub000/internal/domain"
)

// ErrRetryNotAllowed gates payment retries on orders that are not the
// requester's, already paid, or expired.
var ErrRetryNotAllowed = errors.New("este pedido ya no admite reintentos de pago")

const (
	trackNotFoundMessage  = "no encontramos una orden con ese código. Verifica el formato (ej: POLI-15)"
	trackTransientMessage = "no pudimos consultar tu orden, intenta nuevamente"
)

type tokenSource interface {
	AccessToken(ctx context.Context, sid string) (string, error)
}

type orderTracker interface {
	TrackOrder(ctx context.Context, code, bearer string) (*domain.TrackedOrder, error)
	RetryPayment(ctx context.Context, orderID int64, email string) (string, error)
}

type TrackingService struct {
	sessions tokenSource
	backend  orderTracker
}

func NewTrackingService(sessions tokenSource, b orderTracker) *TrackingService {
	return &TrackingService{sessions: sessions, backend: b}
}

// TrackResult carries exactly one of Order or Message.
type TrackResult struct {
	Order   *domain.TrackedOrder `json:"order,omitempty"`
	Message string               `json:"message,omitempty"`
}

// Track looks the order up by code, attaching the session's bearer token
// when present so the backend can establish ownership. Not-found and
// transport failures map to distinct user-facing messages.
func (s *TrackingService) Track(ctx context.Context, sessionID, code string) TrackResult {
	bearer, err := s.sessions.AccessToken(ctx, sessionID)
	if err != nil {
		// an unreadable session just means an anonymous lookup
		log.Printf("read session token error: %v \n", err)
		bearer = ""
	}

	order, err := s.backend.TrackOrder(ctx, code, bearer)
	if errors.Is(err, backend.ErrNotFound) {
		return TrackResult{Message: trackNotFoundMessage}
	}
	if err != nil {
		log.Printf("track order error: %v \n", err)
		return TrackResult{Message: trackTransientMessage}
	}

	return TrackResult{Order: order}
}

// RetryByCode re-fetches the order, re-checks the retry gate server-side
// and re-initiates payment. The redirect URL hands the user back to the
// payment provider.
func (s *TrackingService) RetryByCode(ctx context.Context, sessionID, code, email string) (string, error) {
	bearer, err := s.sessions.AccessToken(ctx, sessionID)
	if err != nil {
		return "", err
	}

	order, err := s.backend.TrackOrder(ctx, code, bearer)
	if err != nil {
		return "", err
	}
	if !order.CanRetryPayment() {
		return "", ErrRetryNotAllowed
	}

	return s.backend.RetryPayment(ctx, order.ID, email)
}
