package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skillbazaar/marketplace-backend/api/controllers"
	"github.com/skillbazaar/marketplace-backend/api/middleware"
	"github.com/skillbazaar/marketplace-backend/internal/cart"
	checkoutsvc "github.com/skillbazaar/marketplace-backend/internal/checkout"
	"github.com/skillbazaar/marketplace-backend/internal/ledger"
	"github.com/skillbazaar/marketplace-backend/internal/notifications"
	"github.com/skillbazaar/marketplace-backend/internal/orders"
	"github.com/skillbazaar/marketplace-backend/internal/profiles"
	"github.com/skillbazaar/marketplace-backend/internal/reviews"
	"github.com/skillbazaar/marketplace-backend/pkg/config"
	"github.com/skillbazaar/marketplace-backend/pkg/db"
	"github.com/skillbazaar/marketplace-backend/pkg/enums"
	"github.com/skillbazaar/marketplace-backend/pkg/logger"
	"github.com/skillbazaar/marketplace-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
	ledgerService ledger.Service,
	reviewsService reviews.Service,
	profilesService profiles.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	// Public catalog; no credentials required to browse.
	r.Route("/api/public/v1/profiles", func(r chi.Router) {
		r.Get("/", controllers.ProfileList(profilesService, logg))
		r.Get("/{profileId}", controllers.ProfileDetail(profilesService, logg))
		r.Get("/{profileId}/reviews", controllers.ProfileReviews(reviewsService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartList(cartService, logg))
			r.Post("/", controllers.CartAddItem(cartService, logg))
			r.Patch("/{cartItemId}", controllers.CartUpdateQuantity(cartService, logg))
			r.Delete("/profiles/{profileId}", controllers.CartRemoveItem(cartService, logg))
		})
		r.Post("/cart/checkout", controllers.Checkout(checkoutService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(ordersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
		})

		r.Post("/reviews", controllers.ReviewCreate(reviewsService, logg))
		r.Patch("/reviews/{reviewId}", controllers.ReviewUpdate(reviewsService, logg))

		r.Route("/credits", func(r chi.Router) {
			r.Get("/balance", controllers.CreditBalance(ledgerService, logg))
			r.Get("/transactions", controllers.CreditTransactions(ledgerService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAnyRole(logg, enums.UserRoleStaff, enums.UserRoleAdmin))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(ordersService, logg))
			r.Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(ordersService, logg))
			r.Get("/{orderId}/review", controllers.AdminOrderReview(reviewsService, logg))
		})
		r.Get("/reviews/{reviewId}", controllers.AdminReviewDetail(reviewsService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))

			r.Route("/profiles", func(r chi.Router) {
				r.Post("/", controllers.AdminProfileCreate(profilesService, logg))
				r.Put("/{profileId}", controllers.AdminProfileUpdate(profilesService, logg))
			})
			r.Post("/reviews/{reviewId}/deactivate", controllers.AdminReviewDeactivate(reviewsService, logg))
			r.Post("/credits/{entryId}/settle", controllers.AdminCreditSettle(ledgerService, logg))
		})
	})

	return r
}
