package main

import (
	"os"

	"boarding-marketplace-server/routes"
	"boarding-marketplace-server/storage"
	"boarding-marketplace-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	defer utils.Logger.Sync()

	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()
	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"success": true, "message": "Server is running"})
	})

	auth := app.Party("/api/auth")
	{
		auth.Post("/register", routes.Register)
		auth.Post("/login", routes.Login)
		auth.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
		auth.Post("/logout", routes.Logout)
	}

	users := app.Party("/api/v1/users", accessTokenVerifierMiddleware, utils.AuthenticatedMiddleware)
	{
		users.Get("/me", routes.GetMe)
		users.Patch("/me", routes.UpdateMe)
		users.Patch("/me/password", routes.ChangePassword)
	}

	boardings := app.Party("/api/v1/boardings")
	{
		boardings.Get("/", routes.SearchBoardings)
		boardings.Get("/{slug}", routes.GetBoardingBySlug)
		boardings.Get("/{id:uint}/reviews", routes.GetBoardingReviews)
		boardings.Post("/", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.CreateBoarding)
		boardings.Get("/my/listings", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.GetMyListings)
		boardings.Patch("/{id:uint}", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.UpdateBoarding)
		boardings.Patch("/{id:uint}/submit", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.SubmitBoarding)
		boardings.Patch("/{id:uint}/deactivate", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.DeactivateBoarding)
		boardings.Patch("/{id:uint}/activate", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.ActivateBoarding)
		boardings.Post("/{id:uint}/save", accessTokenVerifierMiddleware, utils.StudentOnlyMiddleware, routes.SaveBoarding)
		boardings.Delete("/{id:uint}/save", accessTokenVerifierMiddleware, utils.StudentOnlyMiddleware, routes.UnsaveBoarding)
	}

	reservations := app.Party("/api/v1/reservations", accessTokenVerifierMiddleware)
	{
		reservations.Post("/", utils.StudentOnlyMiddleware, routes.CreateReservation)
		reservations.Get("/my-requests", utils.StudentOnlyMiddleware, routes.GetMyReservations)
		reservations.Get("/my-boardings", utils.OwnerOnlyMiddleware, routes.GetBoardingReservations)
		reservations.Get("/{id:uint}", utils.AuthenticatedMiddleware, routes.GetReservationByID)
		reservations.Get("/{id:uint}/rental-periods", utils.AuthenticatedMiddleware, routes.GetRentalPeriods)
		reservations.Patch("/{id:uint}/approve", utils.OwnerOnlyMiddleware, routes.ApproveReservation)
		reservations.Patch("/{id:uint}/reject", utils.OwnerOnlyMiddleware, routes.RejectReservation)
		reservations.Patch("/{id:uint}/cancel", utils.StudentOnlyMiddleware, routes.CancelReservation)
		reservations.Patch("/{id:uint}/complete", utils.OwnerOnlyMiddleware, routes.CompleteReservation)
	}

	payments := app.Party("/api/v1/payments", accessTokenVerifierMiddleware)
	{
		payments.Post("/", utils.StudentOnlyMiddleware, routes.LogPayment)
		payments.Get("/my-payments", utils.StudentOnlyMiddleware, routes.GetMyPayments)
		payments.Get("/my-boardings", utils.OwnerOnlyMiddleware, routes.GetBoardingPayments)
		payments.Patch("/{id:uint}/confirm", utils.OwnerOnlyMiddleware, routes.ConfirmPayment)
		payments.Patch("/{id:uint}/reject", utils.OwnerOnlyMiddleware, routes.RejectPayment)
	}

	visits := app.Party("/api/v1/visit-requests", accessTokenVerifierMiddleware)
	{
		visits.Post("/", utils.StudentOnlyMiddleware, routes.CreateVisitRequest)
		visits.Get("/my-requests", utils.StudentOnlyMiddleware, routes.GetMyVisitRequests)
		visits.Get("/my-boardings", utils.OwnerOnlyMiddleware, routes.GetBoardingVisitRequests)
		visits.Get("/{id:uint}", utils.AuthenticatedMiddleware, routes.GetVisitRequestByID)
		visits.Patch("/{id:uint}/approve", utils.OwnerOnlyMiddleware, routes.ApproveVisitRequest)
		visits.Patch("/{id:uint}/reject", utils.OwnerOnlyMiddleware, routes.RejectVisitRequest)
		visits.Patch("/{id:uint}/cancel", utils.StudentOnlyMiddleware, routes.CancelVisitRequest)
	}

	reviews := app.Party("/api/v1/reviews", accessTokenVerifierMiddleware)
	{
		reviews.Post("/", utils.StudentOnlyMiddleware, routes.CreateReview)
	}

	saved := app.Party("/api/v1/saved-boardings", accessTokenVerifierMiddleware, utils.StudentOnlyMiddleware)
	{
		saved.Get("/", routes.GetSavedBoardings)
	}

	notifications := app.Party("/api/v1/notifications", accessTokenVerifierMiddleware, utils.AuthenticatedMiddleware)
	{
		notifications.Get("/", routes.GetMyNotifications)
		notifications.Patch("/{id:uint}/read", routes.MarkNotificationRead)
	}

	admin := app.Party("/api/v1/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", routes.AdminListUsers)
		admin.Get("/users/{id:uint}", routes.AdminGetUser)
		admin.Patch("/users/{id:uint}/deactivate", routes.AdminDeactivateUser)
		admin.Patch("/users/{id:uint}/activate", routes.AdminActivateUser)
		admin.Get("/boardings/pending", routes.AdminListPendingBoardings)
		admin.Patch("/boardings/{id:uint}/approve", routes.AdminApproveBoarding)
		admin.Patch("/boardings/{id:uint}/reject", routes.AdminRejectBoarding)
		admin.Get("/reservations", routes.AdminListReservations)
		admin.Get("/payments/report", routes.AdminPaymentReport)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	app.Listen(":" + port)
}
