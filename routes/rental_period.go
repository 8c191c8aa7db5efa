package routes

import (
	"boarding-marketplace-server/models"
	"boarding-marketplace-server/storage"
	"boarding-marketplace-server/utils"

	"github.com/kataras/iris/v12"
)

// GetRentalPeriods lists the payment schedule of a reservation, oldest first,
// with the payments logged against each period. Readable by the reservation's
// student, the boarding's owner and admins.
func GetRentalPeriods(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	role := ctx.Values().Get("role").(string)
	reservationID := ctx.Params().GetUintDefault("id", 0)

	var reservation models.Reservation
	if err := storage.DB.Preload("Boarding").First(&reservation, reservationID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Reservation not found", ctx)
		return
	}
	if !utils.CanAccessReservation(role, userID, &reservation, reservation.Boarding.OwnerID) {
		utils.CreateForbidden(ctx)
		return
	}

	var rentalPeriods []models.RentalPeriod
	if err := storage.DB.Where("reservation_id = ?", reservationID).
		Preload("Payments").
		Order("due_date ASC").
		Find(&rentalPeriods).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"rentalPeriods": rentalPeriods})
}
