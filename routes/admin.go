package routes

import (
	"boarding-marketplace-server/models"
	"boarding-marketplace-server/storage"
	"boarding-marketplace-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"
)

type AdminRejectBoardingInput struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func AdminListUsers(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	size := ctx.URLParamIntDefault("size", 20)
	if size < 1 || size > 100 {
		size = 20
	}

	query := storage.DB.Model(&models.User{})
	if role := ctx.URLParam("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if active := ctx.URLParam("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(err, ctx)
		return
	}

	var users []models.User
	if err := query.Offset((page - 1) * size).Limit(size).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		respondError(err, ctx)
		return
	}

	utils.JSONPage(ctx, users, page, size, total)
}

func AdminGetUser(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "User not found", ctx)
		return
	}

	ctx.JSON(iris.Map{"user": user})
}

func AdminDeactivateUser(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "User not found", ctx)
		return
	}

	before := user.IsActive
	inactive := false
	if err := storage.DB.Model(&user).Update("is_active", false).Error; err != nil {
		respondError(err, ctx)
		return
	}
	utils.Audit(ctx, "user.deactivate", "user", user.ID, iris.Map{"isActive": before}, iris.Map{"isActive": inactive})

	ctx.JSON(iris.Map{"id": user.ID, "isActive": false})
}

func AdminActivateUser(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "User not found", ctx)
		return
	}

	before := user.IsActive
	if err := storage.DB.Model(&user).Update("is_active", true).Error; err != nil {
		respondError(err, ctx)
		return
	}
	utils.Audit(ctx, "user.activate", "user", user.ID, iris.Map{"isActive": before}, iris.Map{"isActive": true})

	ctx.JSON(iris.Map{"id": user.ID, "isActive": true})
}

func AdminListPendingBoardings(ctx iris.Context) {
	var boardings []models.Boarding
	if err := storage.DB.
		Where("status = ? AND is_deleted = ?", models.BoardingPendingApproval, false).
		Preload("Owner").
		Order("updated_at ASC").
		Find(&boardings).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"boardings": boardings})
}

func AdminApproveBoarding(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var boarding models.Boarding
	if err := storage.DB.Where("id = ? AND is_deleted = ?", id, false).First(&boarding).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Boarding not found", ctx)
		return
	}
	if boarding.Status != models.BoardingPendingApproval {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Only PENDING_APPROVAL listings can be approved", ctx)
		return
	}

	if err := storage.DB.Model(&boarding).Update("status", models.BoardingActive).Error; err != nil {
		respondError(err, ctx)
		return
	}
	utils.Audit(ctx, "boarding.approve", "boarding", boarding.ID,
		iris.Map{"status": models.BoardingPendingApproval}, iris.Map{"status": models.BoardingActive})

	ctx.JSON(iris.Map{"boarding": boarding})
}

func AdminRejectBoarding(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var input AdminRejectBoardingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var boarding models.Boarding
	if err := storage.DB.Where("id = ? AND is_deleted = ?", id, false).First(&boarding).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Boarding not found", ctx)
		return
	}
	if boarding.Status != models.BoardingPendingApproval {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Only PENDING_APPROVAL listings can be rejected", ctx)
		return
	}

	if err := storage.DB.Model(&boarding).Updates(map[string]interface{}{
		"status":           models.BoardingRejected,
		"rejection_reason": input.Reason,
	}).Error; err != nil {
		respondError(err, ctx)
		return
	}
	utils.Audit(ctx, "boarding.reject", "boarding", boarding.ID,
		iris.Map{"status": models.BoardingPendingApproval}, iris.Map{"status": models.BoardingRejected, "reason": input.Reason})

	ctx.JSON(iris.Map{"boarding": boarding})
}

func AdminListReservations(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	size := ctx.URLParamIntDefault("size", 20)
	if size < 1 || size > 100 {
		size = 20
	}

	query := storage.DB.Model(&models.Reservation{})
	if status := ctx.URLParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(err, ctx)
		return
	}

	var reservations []models.Reservation
	if err := query.Offset((page - 1) * size).Limit(size).
		Preload("Student").
		Preload("Boarding").
		Order("created_at DESC").
		Find(&reservations).Error; err != nil {
		respondError(err, ctx)
		return
	}

	utils.JSONPage(ctx, reservations, page, size, total)
}

// AdminPaymentReport totals CONFIRMED payments per rental period label. The
// sums stay in exact decimals end to end.
func AdminPaymentReport(ctx iris.Context) {
	type row struct {
		models.Payment
		PeriodLabel string
	}

	var rows []row
	if err := storage.DB.Model(&models.Payment{}).
		Select("payments.*, rental_periods.period_label").
		Joins("JOIN rental_periods ON rental_periods.id = payments.rental_period_id").
		Where("payments.status = ?", models.PaymentConfirmed).
		Find(&rows).Error; err != nil {
		respondError(err, ctx)
		return
	}

	totals := map[string]decimal.Decimal{}
	overall := decimal.Zero
	for _, r := range rows {
		totals[r.PeriodLabel] = totals[r.PeriodLabel].Add(r.Amount)
		overall = overall.Add(r.Amount)
	}

	byPeriod := make([]iris.Map, 0, len(totals))
	for label, total := range totals {
		byPeriod = append(byPeriod, iris.Map{"periodLabel": label, "total": total})
	}

	ctx.JSON(iris.Map{
		"report": iris.Map{
			"confirmedCount": len(rows),
			"overallTotal":   overall,
			"byPeriod":       byPeriod,
		},
	})
}
