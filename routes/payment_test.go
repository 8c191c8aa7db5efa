package routes

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"boarding-marketplace-server/models"
	"boarding-marketplace-server/storage"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"
)

var testPaidAt = time.Date(2026, 2, 28, 10, 0, 0, 0, time.UTC)

// paymentFixture is an approved reservation with its generated schedule,
// ready for payment logging.
type paymentFixture struct {
	student     *models.User
	owner       *models.User
	reservation *models.Reservation
	firstPeriod *models.RentalPeriod
}

func setupPaymentFixture(t *testing.T, app *iris.Application) *paymentFixture {
	t.Helper()

	owner := createTestUser(t, models.RoleOwner, "owner@test.local")
	student := createTestUser(t, models.RoleStudent, "student@test.local")
	boarding := createTestBoarding(t, owner.ID, 2)

	reservation := createReservationVia(t, app, student, boarding.ID, "2026-04-10")
	approveReservationVia(t, app, owner, reservation.ID)

	var firstPeriod models.RentalPeriod
	if err := storage.DB.Where("reservation_id = ?", reservation.ID).
		Order("due_date ASC").First(&firstPeriod).Error; err != nil {
		t.Fatalf("loading first rental period: %v", err)
	}

	return &paymentFixture{student: student, owner: owner, reservation: reservation, firstPeriod: &firstPeriod}
}

func logPaymentVia(t *testing.T, app *iris.Application, fx *paymentFixture, amount string) (*httptest.ResponseRecorder, uint) {
	t.Helper()

	w := doRequest(t, app, http.MethodPost, "/api/v1/payments", fx.student, iris.Map{
		"reservationID":  fx.reservation.ID,
		"rentalPeriodID": fx.firstPeriod.ID,
		"amount":         amount,
		"paymentMethod":  "bank_transfer",
		"paidAt":         testPaidAt,
	})
	if w.Code != http.StatusCreated {
		return w, 0
	}
	var resp struct {
		Payment models.Payment `json:"payment"`
	}
	decodeBody(t, w, &resp)
	return w, resp.Payment.ID
}

func confirmPaymentVia(t *testing.T, app *iris.Application, owner *models.User, paymentID uint) *httptest.ResponseRecorder {
	t.Helper()
	return doRequest(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/payments/%d/confirm", paymentID), owner, nil)
}

func periodStatus(t *testing.T, periodID uint) string {
	t.Helper()
	var period models.RentalPeriod
	if err := storage.DB.First(&period, periodID).Error; err != nil {
		t.Fatalf("loading rental period: %v", err)
	}
	return period.Status
}

func TestPaymentConfirmationFlow(t *testing.T) {
	setupTestDB(t)
	freezeTime(t, testBaseTime)
	app := newTestApp(t)
	fx := setupPaymentFixture(t, app)

	// Rent is 10000.00. A confirmed 6000 leaves the period partially paid.
	w, firstID := logPaymentVia(t, app, fx, "6000")
	if firstID == 0 {
		t.Fatalf("logging payment: status = %d, body %s", w.Code, w.Body.String())
	}
	if periodStatus(t, fx.firstPeriod.ID) != models.PeriodDue {
		t.Errorf("period status after pending log = %q, want DUE", periodStatus(t, fx.firstPeriod.ID))
	}

	if w := confirmPaymentVia(t, app, fx.owner, firstID); w.Code != http.StatusOK {
		t.Fatalf("confirming payment: status = %d, body %s", w.Code, w.Body.String())
	}
	if got := periodStatus(t, fx.firstPeriod.ID); got != models.PeriodPartiallyPaid {
		t.Errorf("period status = %q, want PARTIALLY_PAID", got)
	}

	// The remaining 4000 settles the period.
	_, secondID := logPaymentVia(t, app, fx, "4000")
	if secondID == 0 {
		t.Fatal("logging second payment failed")
	}
	if w := confirmPaymentVia(t, app, fx.owner, secondID); w.Code != http.StatusOK {
		t.Fatalf("confirming second payment: status = %d, body %s", w.Code, w.Body.String())
	}
	if got := periodStatus(t, fx.firstPeriod.ID); got != models.PeriodPaid {
		t.Errorf("period status = %q, want PAID", got)
	}

	var confirmed models.Payment
	storage.DB.First(&confirmed, secondID)
	if confirmed.ConfirmedAt == nil {
		t.Error("confirmedAt not set on confirmed payment")
	}

	// Logging against a fully paid period conflicts.
	w, _ = logPaymentVia(t, app, fx, "1")
	if w.Code != http.StatusConflict {
		t.Errorf("payment against PAID period: status = %d, want 409", w.Code)
	}
}

func TestLogPaymentBalanceBoundary(t *testing.T) {
	setupTestDB(t)
	freezeTime(t, testBaseTime)
	app := newTestApp(t)
	fx := setupPaymentFixture(t, app)

	_, firstID := logPaymentVia(t, app, fx, "6000")
	if w := confirmPaymentVia(t, app, fx.owner, firstID); w.Code != http.StatusOK {
		t.Fatalf("confirming payment: status = %d", w.Code)
	}

	// One cent over the remaining balance is refused, the exact remainder is
	// accepted.
	w, _ := logPaymentVia(t, app, fx, "4000.01")
	if w.Code != http.StatusBadRequest {
		t.Errorf("over-balance payment: status = %d, want 400, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "4000.00") {
		t.Errorf("over-balance message should quote the remaining balance, got %s", w.Body.String())
	}

	w, exactID := logPaymentVia(t, app, fx, "4000.00")
	if exactID == 0 {
		t.Fatalf("exact-balance payment: status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestLogPaymentGuards(t *testing.T) {
	setupTestDB(t)
	freezeTime(t, testBaseTime)
	app := newTestApp(t)
	fx := setupPaymentFixture(t, app)

	t.Run("future paidAt", func(t *testing.T) {
		w := doRequest(t, app, http.MethodPost, "/api/v1/payments", fx.student, iris.Map{
			"reservationID":  fx.reservation.ID,
			"rentalPeriodID": fx.firstPeriod.ID,
			"amount":         "1000",
			"paymentMethod":  "cash",
			"paidAt":         testBaseTime.Add(time.Hour),
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		w := doRequest(t, app, http.MethodPost, "/api/v1/payments", fx.student, iris.Map{
			"reservationID":  fx.reservation.ID,
			"rentalPeriodID": fx.firstPeriod.ID,
			"amount":         "0",
			"paymentMethod":  "cash",
			"paidAt":         testPaidAt,
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("wrong student", func(t *testing.T) {
		stranger := createTestUser(t, models.RoleStudent, "stranger@test.local")
		w := doRequest(t, app, http.MethodPost, "/api/v1/payments", stranger, iris.Map{
			"reservationID":  fx.reservation.ID,
			"rentalPeriodID": fx.firstPeriod.ID,
			"amount":         "1000",
			"paymentMethod":  "cash",
			"paidAt":         testPaidAt,
		})
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("period from another reservation", func(t *testing.T) {
		other := createTestUser(t, models.RoleStudent, "other@test.local")
		otherBoarding := createTestBoarding(t, fx.owner.ID, 2)
		otherReservation := createReservationVia(t, app, other, otherBoarding.ID, "2026-04-10")
		approveReservationVia(t, app, fx.owner, otherReservation.ID)

		var otherPeriod models.RentalPeriod
		storage.DB.Where("reservation_id = ?", otherReservation.ID).Order("due_date ASC").First(&otherPeriod)

		w := doRequest(t, app, http.MethodPost, "/api/v1/payments", fx.student, iris.Map{
			"reservationID":  fx.reservation.ID,
			"rentalPeriodID": otherPeriod.ID,
			"amount":         "1000",
			"paymentMethod":  "cash",
			"paidAt":         testPaidAt,
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestRejectPayment(t *testing.T) {
	setupTestDB(t)
	freezeTime(t, testBaseTime)
	app := newTestApp(t)
	fx := setupPaymentFixture(t, app)

	_, paymentID := logPaymentVia(t, app, fx, "10000")
	w := doRequest(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/payments/%d/reject", paymentID), fx.owner, iris.Map{
		"reason": "No matching bank transfer found",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("rejecting payment: status = %d, body %s", w.Code, w.Body.String())
	}

	var rejected models.Payment
	storage.DB.First(&rejected, paymentID)
	if rejected.Status != models.PaymentRejected {
		t.Errorf("payment status = %q, want REJECTED", rejected.Status)
	}

	// A rejected payment never counts toward the balance, so the full amount
	// can be logged again.
	if got := periodStatus(t, fx.firstPeriod.ID); got != models.PeriodDue {
		t.Errorf("period status = %q, want DUE", got)
	}
	w, retryID := logPaymentVia(t, app, fx, "10000")
	if retryID == 0 {
		t.Fatalf("re-logging after rejection: status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestConfirmPaymentGuards(t *testing.T) {
	setupTestDB(t)
	freezeTime(t, testBaseTime)
	app := newTestApp(t)
	fx := setupPaymentFixture(t, app)

	_, paymentID := logPaymentVia(t, app, fx, "10000")

	t.Run("non-owner", func(t *testing.T) {
		intruder := createTestUser(t, models.RoleOwner, "intruder@test.local")
		w := confirmPaymentVia(t, app, intruder, paymentID)
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("already confirmed", func(t *testing.T) {
		if w := confirmPaymentVia(t, app, fx.owner, paymentID); w.Code != http.StatusOK {
			t.Fatalf("first confirm: status = %d", w.Code)
		}
		w := confirmPaymentVia(t, app, fx.owner, paymentID)
		if w.Code != http.StatusBadRequest {
			t.Errorf("second confirm: status = %d, want 400", w.Code)
		}
	})
}

func TestConfirmedTotalStaysExact(t *testing.T) {
	setupTestDB(t)
	freezeTime(t, testBaseTime)
	app := newTestApp(t)
	fx := setupPaymentFixture(t, app)

	// Many small decimal amounts should sum to exactly the rent with no
	// float drift.
	for i := 0; i < 3; i++ {
		_, id := logPaymentVia(t, app, fx, "3333.33")
		if id == 0 {
			t.Fatalf("logging payment %d failed", i)
		}
		if w := confirmPaymentVia(t, app, fx.owner, id); w.Code != http.StatusOK {
			t.Fatalf("confirming payment %d: status = %d", i, w.Code)
		}
	}
	_, lastID := logPaymentVia(t, app, fx, "0.01")
	if lastID == 0 {
		t.Fatal("logging final cent failed")
	}
	if w := confirmPaymentVia(t, app, fx.owner, lastID); w.Code != http.StatusOK {
		t.Fatalf("confirming final cent: status = %d", w.Code)
	}

	if got := periodStatus(t, fx.firstPeriod.ID); got != models.PeriodPaid {
		t.Errorf("period status = %q, want PAID", got)
	}

	var payments []models.Payment
	storage.DB.Where("rental_period_id = ? AND status = ?", fx.firstPeriod.ID, models.PaymentConfirmed).Find(&payments)
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	if !total.Equal(decimal.RequireFromString("10000.00")) {
		t.Errorf("confirmed total = %s, want 10000.00", total)
	}
}
