package routes

import (
	"time"

	"boarding-marketplace-server/models"
	"boarding-marketplace-server/services"
	"boarding-marketplace-server/storage"
	"boarding-marketplace-server/utils"

	"github.com/kataras/iris/v12"
)

const visitExpiryHours = 72

type CreateVisitRequestInput struct {
	BoardingID       uint      `json:"boardingID" validate:"required"`
	RequestedStartAt time.Time `json:"requestedStartAt" validate:"required"`
	RequestedEndAt   time.Time `json:"requestedEndAt" validate:"required"`
	Message          string    `json:"message" validate:"max=1000"`
}

type RejectVisitRequestInput struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// CreateVisitRequest schedules a viewing of a boarding. At most one PENDING
// request per (student, boarding) pair may exist at a time.
func CreateVisitRequest(ctx iris.Context) {
	studentID := ctx.Values().Get("userID").(uint)

	var input CreateVisitRequestInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	now := utils.Now()
	if !input.RequestedStartAt.After(now) {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "requestedStartAt must be in the future", ctx)
		return
	}
	if !input.RequestedEndAt.After(input.RequestedStartAt) {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "requestedEndAt must be after requestedStartAt", ctx)
		return
	}

	var boarding models.Boarding
	if err := storage.DB.Where("id = ? AND is_deleted = ?", input.BoardingID, false).First(&boarding).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Boarding not found", ctx)
		return
	}
	if boarding.Status != models.BoardingActive {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Boarding is not available for visit requests", ctx)
		return
	}

	var count int64
	if err := storage.DB.Model(&models.VisitRequest{}).
		Where("student_id = ? AND boarding_id = ? AND status = ?", studentID, input.BoardingID, models.VisitPending).
		Count(&count).Error; err != nil {
		respondError(err, ctx)
		return
	}
	if count > 0 {
		utils.CreateError(iris.StatusConflict, "Conflict", "You already have a pending visit request for this boarding", ctx)
		return
	}

	visitRequest := models.VisitRequest{
		StudentID:        studentID,
		BoardingID:       input.BoardingID,
		Status:           models.VisitPending,
		RequestedStartAt: input.RequestedStartAt,
		RequestedEndAt:   input.RequestedEndAt,
		Message:          input.Message,
		ExpiresAt:        now.Add(visitExpiryHours * time.Hour),
	}
	if err := storage.DB.Create(&visitRequest).Error; err != nil {
		respondError(err, ctx)
		return
	}

	go services.NewNotificationService().VisitRequested(boarding.OwnerID, boarding.Title, visitRequest.ID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"visitRequest": visitRequest})
}

// ApproveVisitRequest approves a PENDING request. Past the expiry window the
// request is flipped to EXPIRED and reported as permanently gone (410), not
// as a plain bad request.
func ApproveVisitRequest(ctx iris.Context) {
	ownerID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().GetUintDefault("id", 0)

	var visitRequest models.VisitRequest
	if err := storage.DB.Preload("Boarding").First(&visitRequest, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Visit request not found", ctx)
		return
	}
	if visitRequest.Boarding.OwnerID != ownerID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You do not own this boarding", ctx)
		return
	}
	if visitRequest.Status != models.VisitPending {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Only PENDING visit requests can be approved", ctx)
		return
	}
	if utils.Now().After(visitRequest.ExpiresAt) {
		storage.DB.Model(&visitRequest).Update("status", models.VisitExpired)
		respondError(gone("Visit request has expired"), ctx)
		return
	}

	if err := storage.DB.Model(&visitRequest).Update("status", models.VisitApproved).Error; err != nil {
		respondError(err, ctx)
		return
	}

	go services.NewNotificationService().VisitDecision(visitRequest.StudentID, visitRequest.Boarding.Title, "approved", visitRequest.ID)

	ctx.JSON(iris.Map{"visitRequest": visitRequest})
}

func RejectVisitRequest(ctx iris.Context) {
	ownerID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().GetUintDefault("id", 0)

	var input RejectVisitRequestInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var visitRequest models.VisitRequest
	if err := storage.DB.Preload("Boarding").First(&visitRequest, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Visit request not found", ctx)
		return
	}
	if visitRequest.Boarding.OwnerID != ownerID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You do not own this boarding", ctx)
		return
	}
	if visitRequest.Status != models.VisitPending {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Only PENDING visit requests can be rejected", ctx)
		return
	}

	if err := storage.DB.Model(&visitRequest).Updates(map[string]interface{}{
		"status":           models.VisitRejected,
		"rejection_reason": input.Reason,
	}).Error; err != nil {
		respondError(err, ctx)
		return
	}

	go services.NewNotificationService().VisitDecision(visitRequest.StudentID, visitRequest.Boarding.Title, "rejected", visitRequest.ID)

	ctx.JSON(iris.Map{"visitRequest": visitRequest})
}

func CancelVisitRequest(ctx iris.Context) {
	studentID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().GetUintDefault("id", 0)

	var visitRequest models.VisitRequest
	if err := storage.DB.First(&visitRequest, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Visit request not found", ctx)
		return
	}
	if visitRequest.StudentID != studentID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "This is not your visit request", ctx)
		return
	}
	if visitRequest.Status != models.VisitPending && visitRequest.Status != models.VisitApproved {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Only PENDING or APPROVED visit requests can be cancelled", ctx)
		return
	}

	if err := storage.DB.Model(&visitRequest).Update("status", models.VisitCancelled).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"visitRequest": visitRequest})
}

func GetMyVisitRequests(ctx iris.Context) {
	studentID := ctx.Values().Get("userID").(uint)

	var visitRequests []models.VisitRequest
	if err := storage.DB.Where("student_id = ?", studentID).
		Preload("Boarding").
		Order("created_at DESC").
		Find(&visitRequests).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"visitRequests": visitRequests})
}

func GetBoardingVisitRequests(ctx iris.Context) {
	ownerID := ctx.Values().Get("userID").(uint)

	var visitRequests []models.VisitRequest
	if err := storage.DB.
		Joins("JOIN boardings ON boardings.id = visit_requests.boarding_id").
		Where("boardings.owner_id = ?", ownerID).
		Preload("Student").
		Preload("Boarding").
		Order("visit_requests.created_at DESC").
		Find(&visitRequests).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"visitRequests": visitRequests})
}

func GetVisitRequestByID(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	role := ctx.Values().Get("role").(string)
	id := ctx.Params().GetUintDefault("id", 0)

	var visitRequest models.VisitRequest
	if err := storage.DB.Preload("Boarding").Preload("Student").First(&visitRequest, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Visit request not found", ctx)
		return
	}
	if !utils.CanAccessVisitRequest(role, userID, &visitRequest, visitRequest.Boarding.OwnerID) {
		utils.CreateForbidden(ctx)
		return
	}

	ctx.JSON(iris.Map{"visitRequest": visitRequest})
}
