package routes

import (
	"errors"
	"fmt"
	"time"

	"boarding-marketplace-server/models"
	"boarding-marketplace-server/services"
	"boarding-marketplace-server/storage"
	"boarding-marketplace-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LogPaymentInput struct {
	ReservationID   uint            `json:"reservationID" validate:"required"`
	RentalPeriodID  uint            `json:"rentalPeriodID" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"paymentMethod" validate:"required,oneof=bank_transfer cash online"`
	ReferenceNumber string          `json:"referenceNumber" validate:"max=100"`
	ProofImageURL   string          `json:"proofImageURL" validate:"max=500"`
	PaidAt          time.Time       `json:"paidAt" validate:"required"`
}

type RejectPaymentInput struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// confirmedTotal sums the CONFIRMED payments against a rental period. The sum
// is computed in Go with exact decimals rather than SQL aggregation so no
// driver float conversion creeps into balance checks.
func confirmedTotal(tx *gorm.DB, rentalPeriodID uint) (decimal.Decimal, error) {
	var payments []models.Payment
	if err := tx.Where("rental_period_id = ? AND status = ?", rentalPeriodID, models.PaymentConfirmed).
		Find(&payments).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total, nil
}

// recalcRentalPeriodStatus rederives a period's status from its confirmed
// payments. PAID once the confirmed sum covers the amount due,
// PARTIALLY_PAID while something but not everything is covered, otherwise
// left as is.
func recalcRentalPeriodStatus(tx *gorm.DB, rentalPeriodID uint) error {
	var period models.RentalPeriod
	if err := tx.First(&period, rentalPeriodID).Error; err != nil {
		return err
	}
	confirmed, err := confirmedTotal(tx, period.ID)
	if err != nil {
		return err
	}

	status := period.Status
	if confirmed.GreaterThanOrEqual(period.AmountDue) {
		status = models.PeriodPaid
	} else if confirmed.IsPositive() {
		status = models.PeriodPartiallyPaid
	}

	if status != period.Status {
		return tx.Model(&period).Update("status", status).Error
	}
	return nil
}

// LogPayment records a PENDING payment by the reservation's student. The
// over-balance check and the insert share one transaction with the period row
// locked, so concurrent logs cannot jointly exceed the outstanding balance.
func LogPayment(ctx iris.Context) {
	studentID := ctx.Values().Get("userID").(uint)

	var input LogPaymentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !input.Amount.IsPositive() {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "amount must be greater than zero", ctx)
		return
	}
	if input.PaidAt.After(utils.Now()) {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "paidAt cannot be in the future", ctx)
		return
	}

	var payment models.Payment
	var ownerID uint
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var rentalPeriod models.RentalPeriod
		if err := storage.LockForUpdate(tx).First(&rentalPeriod, input.RentalPeriodID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Rental period not found")
			}
			return err
		}

		var reservation models.Reservation
		if err := tx.Preload("Boarding").First(&reservation, input.ReservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Reservation not found")
			}
			return err
		}
		if reservation.StudentID != studentID {
			return forbidden("You are not the student on this reservation")
		}
		if rentalPeriod.ReservationID != reservation.ID {
			return badRequest("Rental period does not belong to this reservation")
		}
		if rentalPeriod.Status == models.PeriodPaid {
			return conflict("Rental period is already fully paid")
		}

		confirmed, err := confirmedTotal(tx, rentalPeriod.ID)
		if err != nil {
			return err
		}
		remaining := rentalPeriod.AmountDue.Sub(confirmed)
		if input.Amount.GreaterThan(remaining) {
			return badRequest(fmt.Sprintf("Amount exceeds remaining balance of %s", remaining.StringFixed(2)))
		}

		ownerID = reservation.Boarding.OwnerID
		payment = models.Payment{
			RentalPeriodID:  rentalPeriod.ID,
			ReservationID:   reservation.ID,
			StudentID:       studentID,
			Amount:          input.Amount,
			PaymentMethod:   input.PaymentMethod,
			ReferenceNumber: input.ReferenceNumber,
			ProofImageURL:   input.ProofImageURL,
			Status:          models.PaymentPending,
			PaidAt:          input.PaidAt,
		}
		return tx.Create(&payment).Error
	})
	if txErr != nil {
		respondError(txErr, ctx)
		return
	}

	go services.NewNotificationService().PaymentLogged(ownerID, payment.Amount.StringFixed(2), payment.ID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"payment": payment})
}

// ConfirmPayment marks a PENDING payment CONFIRMED and rederives the parent
// period's status in the same transaction, so a crash cannot leave a
// confirmed payment with a stale period.
func ConfirmPayment(ctx iris.Context) {
	ownerID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().GetUintDefault("id", 0)

	payment, ok := loadPaymentForOwner(ctx, id, ownerID)
	if !ok {
		return
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var rentalPeriod models.RentalPeriod
		if err := storage.LockForUpdate(tx).First(&rentalPeriod, payment.RentalPeriodID).Error; err != nil {
			return err
		}

		var fresh models.Payment
		if err := tx.First(&fresh, payment.ID).Error; err != nil {
			return err
		}
		if fresh.Status != models.PaymentPending {
			return badRequest("Only PENDING payments can be confirmed")
		}

		confirmedAt := utils.Now()
		if err := tx.Model(&fresh).Updates(map[string]interface{}{
			"status":       models.PaymentConfirmed,
			"confirmed_at": confirmedAt,
		}).Error; err != nil {
			return err
		}
		if err := recalcRentalPeriodStatus(tx, rentalPeriod.ID); err != nil {
			return err
		}

		*payment = fresh
		payment.Status = models.PaymentConfirmed
		payment.ConfirmedAt = &confirmedAt
		return nil
	})
	if txErr != nil {
		respondError(txErr, ctx)
		return
	}

	go services.NewNotificationService().PaymentConfirmed(payment.StudentID, payment.Amount.StringFixed(2), payment.ID)

	ctx.JSON(iris.Map{"payment": payment})
}

// RejectPayment refuses a PENDING payment. Rejected payments never count
// toward the confirmed sum, so no period recompute is needed.
func RejectPayment(ctx iris.Context) {
	ownerID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().GetUintDefault("id", 0)

	var input RejectPaymentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	payment, ok := loadPaymentForOwner(ctx, id, ownerID)
	if !ok {
		return
	}

	if err := storage.DB.Model(payment).Updates(map[string]interface{}{
		"status":           models.PaymentRejected,
		"rejection_reason": input.Reason,
	}).Error; err != nil {
		respondError(err, ctx)
		return
	}

	go services.NewNotificationService().PaymentRejected(payment.StudentID, payment.Amount.StringFixed(2), input.Reason, payment.ID)

	ctx.JSON(iris.Map{"payment": payment})
}

// loadPaymentForOwner resolves a payment and authorizes the boarding owner
// behind its reservation. Responds and returns false on any guard failure.
func loadPaymentForOwner(ctx iris.Context, paymentID uint, ownerID uint) (*models.Payment, bool) {
	var payment models.Payment
	if err := storage.DB.First(&payment, paymentID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Payment not found", ctx)
		return nil, false
	}

	var reservation models.Reservation
	if err := storage.DB.Preload("Boarding").First(&reservation, payment.ReservationID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Reservation not found", ctx)
		return nil, false
	}
	if reservation.Boarding.OwnerID != ownerID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You do not own this boarding", ctx)
		return nil, false
	}
	if payment.Status != models.PaymentPending {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Only PENDING payments can be updated", ctx)
		return nil, false
	}
	return &payment, true
}

func GetMyPayments(ctx iris.Context) {
	studentID := ctx.Values().Get("userID").(uint)

	var payments []models.Payment
	if err := storage.DB.Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"payments": payments})
}

func GetBoardingPayments(ctx iris.Context) {
	ownerID := ctx.Values().Get("userID").(uint)

	var payments []models.Payment
	if err := storage.DB.
		Joins("JOIN reservations ON reservations.id = payments.reservation_id").
		Joins("JOIN boardings ON boardings.id = reservations.boarding_id").
		Where("boardings.owner_id = ?", ownerID).
		Order("payments.created_at DESC").
		Find(&payments).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"payments": payments})
}
