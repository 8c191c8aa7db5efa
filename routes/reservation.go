package routes

import (
	"encoding/json"
	"errors"
	"time"

	"boarding-marketplace-server/models"
	"boarding-marketplace-server/services"
	"boarding-marketplace-server/storage"
	"boarding-marketplace-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const reservationExpiryHours = 72

type CreateReservationInput struct {
	BoardingID      uint   `json:"boardingID" validate:"required"`
	MoveInDate      string `json:"moveInDate" validate:"required"` // YYYY-MM-DD
	SpecialRequests string `json:"specialRequests" validate:"max=1000"`
}

type RejectReservationInput struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// boardingSnapshot freezes the listing facts a reservation was made against.
func boardingSnapshot(boarding *models.Boarding) ([]byte, error) {
	return json.Marshal(iris.Map{
		"id":             boarding.ID,
		"title":          boarding.Title,
		"slug":           boarding.Slug,
		"city":           boarding.City,
		"district":       boarding.District,
		"address":        boarding.Address,
		"boardingType":   boarding.BoardingType,
		"genderPref":     boarding.GenderPref,
		"monthlyRent":    boarding.MonthlyRent,
		"maxOccupants":   boarding.MaxOccupants,
		"nearUniversity": boarding.NearUniversity,
	})
}

// generateRentalPeriods materializes the 12-month payment schedule for a
// newly activated reservation. The first period is due on the move-in date,
// every later period on the first of the following months. Runs only inside
// the approve transaction, which fires once per reservation.
func generateRentalPeriods(tx *gorm.DB, reservationID uint, moveInDate time.Time, monthlyRent decimal.Decimal) error {
	first := time.Date(moveInDate.Year(), moveInDate.Month(), moveInDate.Day(), 0, 0, 0, 0, time.UTC)

	periods := make([]models.RentalPeriod, 0, 12)
	for i := 0; i < 12; i++ {
		dueDate := first
		if i > 0 {
			dueDate = time.Date(first.Year(), first.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		}
		periods = append(periods, models.RentalPeriod{
			ReservationID: reservationID,
			PeriodLabel:   dueDate.Format("2006-01"),
			DueDate:       dueDate,
			AmountDue:     monthlyRent,
			Status:        models.PeriodDue,
		})
	}

	return tx.Create(&periods).Error
}

// CreateReservation places a PENDING reservation for the calling student.
// The capacity and duplicate checks run in the same transaction as the
// insert, with the boarding row locked, so two concurrent requests cannot
// both grab the last slot.
func CreateReservation(ctx iris.Context) {
	studentID := ctx.Values().Get("userID").(uint)

	var input CreateReservationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	moveInDate, err := time.ParseInLocation("2006-01-02", input.MoveInDate, time.UTC)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "moveInDate must be formatted YYYY-MM-DD", ctx)
		return
	}
	today := utils.Now().Truncate(24 * time.Hour)
	if !moveInDate.After(today) {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Move-in date must be at least 1 day in the future", ctx)
		return
	}

	var reservation models.Reservation
	var ownerID uint
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var boarding models.Boarding
		if err := storage.LockForUpdate(tx).
			Where("id = ? AND is_deleted = ?", input.BoardingID, false).
			First(&boarding).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Boarding not found")
			}
			return err
		}
		if boarding.Status != models.BoardingActive {
			return badRequest("Boarding is not available for reservation")
		}
		if boarding.CurrentOccupants >= boarding.MaxOccupants {
			return conflict("Boarding is full")
		}

		var count int64
		if err := tx.Model(&models.Reservation{}).
			Where("student_id = ? AND status = ?", studentID, models.ReservationActive).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict("You already have an active reservation")
		}

		if err := tx.Model(&models.Reservation{}).
			Where("student_id = ? AND boarding_id = ? AND status IN ?",
				studentID, input.BoardingID, []string{models.ReservationPending, models.ReservationActive}).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict("You already have a pending or active reservation for this boarding")
		}

		snapshot, err := boardingSnapshot(&boarding)
		if err != nil {
			return err
		}

		ownerID = boarding.OwnerID
		reservation = models.Reservation{
			StudentID:        studentID,
			BoardingID:       boarding.ID,
			Status:           models.ReservationPending,
			MoveInDate:       moveInDate,
			SpecialRequests:  input.SpecialRequests,
			RentSnapshot:     boarding.MonthlyRent,
			BoardingSnapshot: snapshot,
			ExpiresAt:        utils.Now().Add(reservationExpiryHours * time.Hour),
		}
		return tx.Create(&reservation).Error
	})
	if txErr != nil {
		respondError(txErr, ctx)
		return
	}

	go services.NewNotificationService().ReservationRequested(ownerID, boardingTitleFromSnapshot(reservation.BoardingSnapshot), reservation.ID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"reservation": reservation})
}

func boardingTitleFromSnapshot(snapshot []byte) string {
	var facts struct {
		Title string `json:"title"`
	}
	json.Unmarshal(snapshot, &facts)
	return facts.Title
}

// ApproveReservation turns a PENDING reservation into tenancy: the occupancy
// increment, the status write and the rental period generation commit
// together or not at all. An expired reservation is flipped to EXPIRED and
// the call refused.
func ApproveReservation(ctx iris.Context) {
	ownerID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().GetUintDefault("id", 0)

	var reservation models.Reservation
	if err := storage.DB.Preload("Boarding").First(&reservation, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Reservation not found", ctx)
		return
	}
	if reservation.Boarding.OwnerID != ownerID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You do not own this boarding", ctx)
		return
	}
	if reservation.Status != models.ReservationPending {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Only PENDING reservations can be approved", ctx)
		return
	}
	if utils.Now().After(reservation.ExpiresAt) {
		// The expiry flip must survive the refused approval, so it commits on
		// its own before the error response.
		storage.DB.Model(&reservation).Update("status", models.ReservationExpired)
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Reservation has expired", ctx)
		return
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var boarding models.Boarding
		if err := storage.LockForUpdate(tx).First(&boarding, reservation.BoardingID).Error; err != nil {
			return err
		}

		// Re-read the reservation under the boarding lock: a concurrent
		// approve or cancel may have moved it since the guard above.
		var fresh models.Reservation
		if err := tx.First(&fresh, reservation.ID).Error; err != nil {
			return err
		}
		if fresh.Status != models.ReservationPending {
			return badRequest("Only PENDING reservations can be approved")
		}
		if boarding.CurrentOccupants >= boarding.MaxOccupants {
			return conflict("Boarding is full")
		}

		if err := tx.Model(&models.Boarding{}).
			Where("id = ?", boarding.ID).
			UpdateColumn("current_occupants", gorm.Expr("current_occupants + 1")).Error; err != nil {
			return err
		}
		if err := tx.Model(&fresh).Update("status", models.ReservationActive).Error; err != nil {
			return err
		}
		if err := generateRentalPeriods(tx, fresh.ID, fresh.MoveInDate, fresh.RentSnapshot); err != nil {
			return err
		}

		reservation = fresh
		reservation.Status = models.ReservationActive
		return nil
	})
	if txErr != nil {
		respondError(txErr, ctx)
		return
	}

	go services.NewNotificationService().ReservationApproved(reservation.StudentID, boardingTitleFromSnapshot(reservation.BoardingSnapshot), reservation.ID)

	ctx.JSON(iris.Map{"reservation": reservation})
}

func RejectReservation(ctx iris.Context) {
	ownerID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().GetUintDefault("id", 0)

	var input RejectReservationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var reservation models.Reservation
	if err := storage.DB.Preload("Boarding").First(&reservation, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Reservation not found", ctx)
		return
	}
	if reservation.Boarding.OwnerID != ownerID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You do not own this boarding", ctx)
		return
	}
	if reservation.Status != models.ReservationPending {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Only PENDING reservations can be rejected", ctx)
		return
	}

	updates := map[string]interface{}{"status": models.ReservationRejected, "rejection_reason": input.Reason}
	if err := storage.DB.Model(&reservation).Updates(updates).Error; err != nil {
		respondError(err, ctx)
		return
	}

	go services.NewNotificationService().ReservationRejected(reservation.StudentID, boardingTitleFromSnapshot(reservation.BoardingSnapshot), input.Reason, reservation.ID)

	ctx.JSON(iris.Map{"reservation": reservation})
}

// CancelReservation lets the student withdraw a PENDING or ACTIVE
// reservation. Cancelling an ACTIVE one frees the occupancy slot in the same
// transaction as the status write.
func CancelReservation(ctx iris.Context) {
	studentID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().GetUintDefault("id", 0)

	var reservation models.Reservation
	if err := storage.DB.First(&reservation, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Reservation not found", ctx)
		return
	}
	if reservation.StudentID != studentID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "This is not your reservation", ctx)
		return
	}
	if reservation.Status != models.ReservationPending && reservation.Status != models.ReservationActive {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Only PENDING or ACTIVE reservations can be cancelled", ctx)
		return
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var boarding models.Boarding
		if err := storage.LockForUpdate(tx).First(&boarding, reservation.BoardingID).Error; err != nil {
			return err
		}

		var fresh models.Reservation
		if err := tx.First(&fresh, reservation.ID).Error; err != nil {
			return err
		}
		if fresh.Status != models.ReservationPending && fresh.Status != models.ReservationActive {
			return badRequest("Only PENDING or ACTIVE reservations can be cancelled")
		}
		wasActive := fresh.Status == models.ReservationActive

		if err := tx.Model(&fresh).Update("status", models.ReservationCancelled).Error; err != nil {
			return err
		}
		if wasActive {
			if err := tx.Model(&models.Boarding{}).
				Where("id = ?", fresh.BoardingID).
				UpdateColumn("current_occupants", gorm.Expr("current_occupants - 1")).Error; err != nil {
				return err
			}
		}

		reservation = fresh
		reservation.Status = models.ReservationCancelled
		return nil
	})
	if txErr != nil {
		respondError(txErr, ctx)
		return
	}

	ctx.JSON(iris.Map{"reservation": reservation})
}

// CompleteReservation ends an ACTIVE tenancy and frees the slot.
func CompleteReservation(ctx iris.Context) {
	ownerID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().GetUintDefault("id", 0)

	var reservation models.Reservation
	if err := storage.DB.Preload("Boarding").First(&reservation, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Reservation not found", ctx)
		return
	}
	if reservation.Boarding.OwnerID != ownerID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You do not own this boarding", ctx)
		return
	}
	if reservation.Status != models.ReservationActive {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Only ACTIVE reservations can be completed", ctx)
		return
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var boarding models.Boarding
		if err := storage.LockForUpdate(tx).First(&boarding, reservation.BoardingID).Error; err != nil {
			return err
		}

		var fresh models.Reservation
		if err := tx.First(&fresh, reservation.ID).Error; err != nil {
			return err
		}
		if fresh.Status != models.ReservationActive {
			return badRequest("Only ACTIVE reservations can be completed")
		}

		if err := tx.Model(&fresh).Update("status", models.ReservationCompleted).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Boarding{}).
			Where("id = ?", fresh.BoardingID).
			UpdateColumn("current_occupants", gorm.Expr("current_occupants - 1")).Error; err != nil {
			return err
		}

		reservation = fresh
		reservation.Status = models.ReservationCompleted
		return nil
	})
	if txErr != nil {
		respondError(txErr, ctx)
		return
	}

	ctx.JSON(iris.Map{"reservation": reservation})
}

func GetMyReservations(ctx iris.Context) {
	studentID := ctx.Values().Get("userID").(uint)

	var reservations []models.Reservation
	if err := storage.DB.Where("student_id = ?", studentID).
		Preload("Boarding").
		Order("created_at DESC").
		Find(&reservations).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"reservations": reservations})
}

func GetBoardingReservations(ctx iris.Context) {
	ownerID := ctx.Values().Get("userID").(uint)

	var reservations []models.Reservation
	if err := storage.DB.
		Joins("JOIN boardings ON boardings.id = reservations.boarding_id").
		Where("boardings.owner_id = ?", ownerID).
		Preload("Student").
		Preload("Boarding").
		Order("reservations.created_at DESC").
		Find(&reservations).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"reservations": reservations})
}

func GetReservationByID(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	role := ctx.Values().Get("role").(string)
	id := ctx.Params().GetUintDefault("id", 0)

	var reservation models.Reservation
	if err := storage.DB.Preload("Boarding").Preload("Student").First(&reservation, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Reservation not found", ctx)
		return
	}
	if !utils.CanAccessReservation(role, userID, &reservation, reservation.Boarding.OwnerID) {
		utils.CreateForbidden(ctx)
		return
	}

	ctx.JSON(iris.Map{"reservation": reservation})
}
