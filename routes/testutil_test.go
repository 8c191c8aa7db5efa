package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"boarding-marketplace-server/models"
	"boarding-marketplace-server/storage"
	"boarding-marketplace-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB swaps the global DB for an isolated in-memory SQLite database
// named after the test. A single connection keeps the shared-cache memory DB
// alive for the whole test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrapping test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	storage.PerformMigrations(db)

	// Leave storage.DB pointing at the closed DB after cleanup (instead of
	// restoring nil): fire-and-forget notification goroutines can outlive the
	// test, and a closed DB yields a logged error rather than a nil-pointer
	// panic. The next test's setup replaces the global anyway.
	storage.DB = db
	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// freezeTime pins the clock and returns a setter for advancing it mid-test.
func freezeTime(t *testing.T, at time.Time) func(time.Time) {
	t.Helper()

	prev := utils.Now
	current := at
	utils.Now = func() time.Time { return current }
	t.Cleanup(func() { utils.Now = prev })
	return func(newTime time.Time) { current = newTime }
}

// testAuth replaces the JWT middleware in tests: the caller's identity comes
// from X-Test-User and X-Test-Role headers.
func testAuth(ctx iris.Context) {
	idHeader := ctx.GetHeader("X-Test-User")
	if idHeader == "" {
		ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"error": "Unauthorized"})
		return
	}
	id, err := strconv.ParseUint(idHeader, 10, 32)
	if err != nil {
		ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"error": "Unauthorized"})
		return
	}
	ctx.Values().Set("userID", uint(id))
	ctx.Values().Set("role", ctx.GetHeader("X-Test-Role"))
	ctx.Next()
}

// newTestApp mirrors the production routing with testAuth in place of the
// token verifier.
func newTestApp(t *testing.T) *iris.Application {
	t.Helper()

	app := iris.New()
	app.Validator = validator.New()

	auth := app.Party("/api/auth")
	{
		auth.Post("/register", Register)
		auth.Post("/login", Login)
	}

	app.Get("/api/v1/boardings", SearchBoardings)
	app.Get("/api/v1/boardings/{slug}", GetBoardingBySlug)
	app.Get("/api/v1/boardings/{id:uint}/reviews", GetBoardingReviews)

	boardings := app.Party("/api/v1/boardings", testAuth)
	{
		boardings.Post("/", CreateBoarding)
		boardings.Get("/my/listings", GetMyListings)
		boardings.Patch("/{id:uint}", UpdateBoarding)
		boardings.Patch("/{id:uint}/submit", SubmitBoarding)
		boardings.Patch("/{id:uint}/deactivate", DeactivateBoarding)
		boardings.Patch("/{id:uint}/activate", ActivateBoarding)
		boardings.Post("/{id:uint}/save", SaveBoarding)
		boardings.Delete("/{id:uint}/save", UnsaveBoarding)
	}

	reservations := app.Party("/api/v1/reservations", testAuth)
	{
		reservations.Post("/", CreateReservation)
		reservations.Get("/my-requests", GetMyReservations)
		reservations.Get("/my-boardings", GetBoardingReservations)
		reservations.Get("/{id:uint}", GetReservationByID)
		reservations.Get("/{id:uint}/rental-periods", GetRentalPeriods)
		reservations.Patch("/{id:uint}/approve", ApproveReservation)
		reservations.Patch("/{id:uint}/reject", RejectReservation)
		reservations.Patch("/{id:uint}/cancel", CancelReservation)
		reservations.Patch("/{id:uint}/complete", CompleteReservation)
	}

	payments := app.Party("/api/v1/payments", testAuth)
	{
		payments.Post("/", LogPayment)
		payments.Get("/my-payments", GetMyPayments)
		payments.Get("/my-boardings", GetBoardingPayments)
		payments.Patch("/{id:uint}/confirm", ConfirmPayment)
		payments.Patch("/{id:uint}/reject", RejectPayment)
	}

	visits := app.Party("/api/v1/visit-requests", testAuth)
	{
		visits.Post("/", CreateVisitRequest)
		visits.Get("/my-requests", GetMyVisitRequests)
		visits.Get("/my-boardings", GetBoardingVisitRequests)
		visits.Get("/{id:uint}", GetVisitRequestByID)
		visits.Patch("/{id:uint}/approve", ApproveVisitRequest)
		visits.Patch("/{id:uint}/reject", RejectVisitRequest)
		visits.Patch("/{id:uint}/cancel", CancelVisitRequest)
	}

	reviews := app.Party("/api/v1/reviews", testAuth)
	{
		reviews.Post("/", CreateReview)
	}

	saved := app.Party("/api/v1/saved-boardings", testAuth)
	{
		saved.Get("/", GetSavedBoardings)
	}

	notifications := app.Party("/api/v1/notifications", testAuth)
	{
		notifications.Get("/", GetMyNotifications)
		notifications.Patch("/{id:uint}/read", MarkNotificationRead)
	}

	admin := app.Party("/api/v1/admin", testAuth)
	{
		admin.Get("/users", AdminListUsers)
		admin.Get("/users/{id:uint}", AdminGetUser)
		admin.Patch("/users/{id:uint}/deactivate", AdminDeactivateUser)
		admin.Patch("/users/{id:uint}/activate", AdminActivateUser)
		admin.Get("/boardings/pending", AdminListPendingBoardings)
		admin.Patch("/boardings/{id:uint}/approve", AdminApproveBoarding)
		admin.Patch("/boardings/{id:uint}/reject", AdminRejectBoarding)
		admin.Get("/reservations", AdminListReservations)
		admin.Get("/payments/report", AdminPaymentReport)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("building test app: %v", err)
	}
	return app
}

// doRequest performs a JSON request against the test app as the given user
// (nil for anonymous).
func doRequest(t *testing.T, app *iris.Application, method, path string, as *models.User, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("X-Test-User", strconv.FormatUint(uint64(as.ID), 10))
		req.Header.Set("X-Test-Role", as.Role)
	}

	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
}

func createTestUser(t *testing.T, role, email string) *models.User {
	t.Helper()

	user := models.User{
		FirstName: "Test",
		LastName:  role,
		Email:     email,
		Password:  "not-a-real-hash",
		Role:      role,
	}
	if err := storage.DB.Create(&user).Error; err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return &user
}

func createTestBoarding(t *testing.T, ownerID uint, maxOccupants int) *models.Boarding {
	t.Helper()

	boarding := models.Boarding{
		OwnerID:      ownerID,
		Title:        "Cozy Room Near Campus",
		Slug:         "cozy-room-near-campus-" + uuid.NewString()[:8],
		Description:  "A test listing",
		City:         "Colombo",
		District:     "Colombo",
		Address:      "12 Temple Road",
		BoardingType: "single_room",
		GenderPref:   "any",
		MonthlyRent:  decimal.RequireFromString("10000.00"),
		MaxOccupants: maxOccupants,
		Images:       `["https://example.com/room.jpg"]`,
		Status:       models.BoardingActive,
	}
	if err := storage.DB.Create(&boarding).Error; err != nil {
		t.Fatalf("creating test boarding: %v", err)
	}
	return &boarding
}

// createReservationVia drives the reservation create endpoint and returns the
// created reservation.
func createReservationVia(t *testing.T, app *iris.Application, student *models.User, boardingID uint, moveInDate string) *models.Reservation {
	t.Helper()

	w := doRequest(t, app, http.MethodPost, "/api/v1/reservations", student, iris.Map{
		"boardingID": boardingID,
		"moveInDate": moveInDate,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("creating reservation: got status %d body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Reservation models.Reservation `json:"reservation"`
	}
	decodeBody(t, w, &resp)
	return &resp.Reservation
}

// approveReservationVia drives the approve endpoint and fails the test on any
// non-200.
func approveReservationVia(t *testing.T, app *iris.Application, owner *models.User, reservationID uint) {
	t.Helper()

	w := doRequest(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/reservations/%d/approve", reservationID), owner, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("approving reservation: got status %d body %s", w.Code, w.Body.String())
	}
}
