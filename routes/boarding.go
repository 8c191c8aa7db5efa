package routes

import (
	"strings"

	"boarding-marketplace-server/models"
	"boarding-marketplace-server/storage"
	"boarding-marketplace-server/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"
)

type CreateBoardingInput struct {
	Title          string          `json:"title" validate:"required,max=150"`
	Description    string          `json:"description" validate:"required,max=5000"`
	City           string          `json:"city" validate:"required,max=100"`
	District       string          `json:"district" validate:"required,max=100"`
	Address        string          `json:"address" validate:"required,max=300"`
	BoardingType   string          `json:"boardingType" validate:"required,oneof=single_room shared_room annex hostel"`
	GenderPref     string          `json:"genderPref" validate:"required,oneof=any male female"`
	MonthlyRent    decimal.Decimal `json:"monthlyRent"`
	IsFurnished    bool            `json:"isFurnished"`
	HasWifi        bool            `json:"hasWifi"`
	NearUniversity string          `json:"nearUniversity" validate:"max=150"`
	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
	MaxOccupants   int             `json:"maxOccupants" validate:"required,min=1,max=50"`
	Images         string          `json:"images"`
	Rules          string          `json:"rules"`
}

type UpdateBoardingInput struct {
	Title          *string          `json:"title" validate:"omitempty,max=150"`
	Description    *string          `json:"description" validate:"omitempty,max=5000"`
	City           *string          `json:"city" validate:"omitempty,max=100"`
	District       *string          `json:"district" validate:"omitempty,max=100"`
	Address        *string          `json:"address" validate:"omitempty,max=300"`
	BoardingType   *string          `json:"boardingType" validate:"omitempty,oneof=single_room shared_room annex hostel"`
	GenderPref     *string          `json:"genderPref" validate:"omitempty,oneof=any male female"`
	MonthlyRent    *decimal.Decimal `json:"monthlyRent"`
	IsFurnished    *bool            `json:"isFurnished"`
	HasWifi        *bool            `json:"hasWifi"`
	NearUniversity *string          `json:"nearUniversity" validate:"omitempty,max=150"`
	MaxOccupants   *int             `json:"maxOccupants" validate:"omitempty,min=1,max=50"`
	Images         *string          `json:"images"`
	Rules          *string          `json:"rules"`
}

func generateSlug(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	slug = strings.Trim(slug, "-")
	// uuid suffix keeps slugs unique without a retry loop
	return slug + "-" + uuid.NewString()[:8]
}

// SearchBoardings lists ACTIVE, non-deleted listings with optional filters
// and pagination. Public.
func SearchBoardings(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	size := ctx.URLParamIntDefault("size", 20)
	if size < 1 || size > 100 {
		size = 20
	}

	query := storage.DB.Model(&models.Boarding{}).
		Where("status = ? AND is_deleted = ?", models.BoardingActive, false)

	if city := ctx.URLParam("city"); city != "" {
		query = query.Where("lower(city) = lower(?)", city)
	}
	if district := ctx.URLParam("district"); district != "" {
		query = query.Where("lower(district) = lower(?)", district)
	}
	if boardingType := ctx.URLParam("boardingType"); boardingType != "" {
		query = query.Where("boarding_type = ?", boardingType)
	}
	if genderPref := ctx.URLParam("genderPref"); genderPref != "" {
		query = query.Where("gender_pref = ?", genderPref)
	}
	if minRent := ctx.URLParam("minRent"); minRent != "" {
		if d, err := decimal.NewFromString(minRent); err == nil {
			query = query.Where("monthly_rent >= ?", d)
		}
	}
	if maxRent := ctx.URLParam("maxRent"); maxRent != "" {
		if d, err := decimal.NewFromString(maxRent); err == nil {
			query = query.Where("monthly_rent <= ?", d)
		}
	}
	if search := ctx.URLParam("search"); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("lower(title) LIKE ? OR lower(description) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(err, ctx)
		return
	}

	var boardings []models.Boarding
	if err := query.Offset((page - 1) * size).Limit(size).
		Order("created_at DESC").
		Find(&boardings).Error; err != nil {
		respondError(err, ctx)
		return
	}

	utils.JSONPage(ctx, boardings, page, size, total)
}

func GetBoardingBySlug(ctx iris.Context) {
	slug := ctx.Params().Get("slug")

	var boarding models.Boarding
	if err := storage.DB.Preload("Owner").
		Where("slug = ? AND is_deleted = ? AND status = ?", slug, false, models.BoardingActive).
		First(&boarding).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Boarding not found", ctx)
		return
	}

	ctx.JSON(iris.Map{"boarding": boarding})
}

func GetMyListings(ctx iris.Context) {
	ownerID := ctx.Values().Get("userID").(uint)

	var boardings []models.Boarding
	if err := storage.DB.Where("owner_id = ? AND is_deleted = ?", ownerID, false).
		Order("created_at DESC").
		Find(&boardings).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"boardings": boardings})
}

// CreateBoarding creates a listing in DRAFT. It only becomes visible to
// students after submission and admin approval.
func CreateBoarding(ctx iris.Context) {
	ownerID := ctx.Values().Get("userID").(uint)

	var input CreateBoardingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !input.MonthlyRent.IsPositive() {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "monthlyRent must be greater than zero", ctx)
		return
	}

	boarding := models.Boarding{
		OwnerID:        ownerID,
		Title:          input.Title,
		Slug:           generateSlug(input.Title),
		Description:    input.Description,
		City:           input.City,
		District:       input.District,
		Address:        input.Address,
		BoardingType:   input.BoardingType,
		GenderPref:     input.GenderPref,
		MonthlyRent:    input.MonthlyRent,
		IsFurnished:    input.IsFurnished,
		HasWifi:        input.HasWifi,
		NearUniversity: input.NearUniversity,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
		MaxOccupants:   input.MaxOccupants,
		Images:         input.Images,
		Rules:          input.Rules,
		Status:         models.BoardingDraft,
	}
	if err := storage.DB.Create(&boarding).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"boarding": boarding})
}

// findOwnedBoarding loads a listing and authorizes its owner. Responds and
// returns false on failure.
func findOwnedBoarding(ctx iris.Context, id uint, ownerID uint) (*models.Boarding, bool) {
	var boarding models.Boarding
	if err := storage.DB.Where("id = ? AND is_deleted = ?", id, false).First(&boarding).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Boarding not found", ctx)
		return nil, false
	}
	if boarding.OwnerID != ownerID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You do not own this listing", ctx)
		return nil, false
	}
	return &boarding, true
}

// UpdateBoarding edits a listing that is not live. ACTIVE and
// PENDING_APPROVAL listings must be deactivated first so approved content
// cannot drift silently.
func UpdateBoarding(ctx iris.Context) {
	ownerID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().GetUintDefault("id", 0)

	var input UpdateBoardingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	boarding, ok := findOwnedBoarding(ctx, id, ownerID)
	if !ok {
		return
	}
	if boarding.Status == models.BoardingActive || boarding.Status == models.BoardingPendingApproval {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Cannot edit an active or pending listing. Deactivate first.", ctx)
		return
	}

	maxOccupants := boarding.MaxOccupants
	if input.MaxOccupants != nil {
		maxOccupants = *input.MaxOccupants
	}
	if boarding.CurrentOccupants > maxOccupants {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "currentOccupants cannot exceed maxOccupants", ctx)
		return
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
		if *input.Title != boarding.Title {
			updates["slug"] = generateSlug(*input.Title)
		}
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.City != nil {
		updates["city"] = *input.City
	}
	if input.District != nil {
		updates["district"] = *input.District
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.BoardingType != nil {
		updates["boarding_type"] = *input.BoardingType
	}
	if input.GenderPref != nil {
		updates["gender_pref"] = *input.GenderPref
	}
	if input.MonthlyRent != nil {
		updates["monthly_rent"] = *input.MonthlyRent
	}
	if input.IsFurnished != nil {
		updates["is_furnished"] = *input.IsFurnished
	}
	if input.HasWifi != nil {
		updates["has_wifi"] = *input.HasWifi
	}
	if input.NearUniversity != nil {
		updates["near_university"] = *input.NearUniversity
	}
	if input.MaxOccupants != nil {
		updates["max_occupants"] = *input.MaxOccupants
	}
	if input.Images != nil {
		updates["images"] = *input.Images
	}
	if input.Rules != nil {
		updates["rules"] = *input.Rules
	}

	if len(updates) > 0 {
		if err := storage.DB.Model(boarding).Updates(updates).Error; err != nil {
			respondError(err, ctx)
			return
		}
	}

	ctx.JSON(iris.Map{"boarding": boarding})
}

// SubmitBoarding sends a DRAFT or REJECTED listing to admin moderation.
func SubmitBoarding(ctx iris.Context) {
	ownerID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().GetUintDefault("id", 0)

	boarding, ok := findOwnedBoarding(ctx, id, ownerID)
	if !ok {
		return
	}
	if boarding.Status != models.BoardingDraft && boarding.Status != models.BoardingRejected {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Only DRAFT or REJECTED listings can be submitted for approval", ctx)
		return
	}
	if boarding.Images == "" || boarding.Images == "[]" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "At least 1 image is required to submit for approval", ctx)
		return
	}

	if err := storage.DB.Model(boarding).Updates(map[string]interface{}{
		"status":           models.BoardingPendingApproval,
		"rejection_reason": "",
	}).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"boarding": boarding})
}

func DeactivateBoarding(ctx iris.Context) {
	ownerID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().GetUintDefault("id", 0)

	boarding, ok := findOwnedBoarding(ctx, id, ownerID)
	if !ok {
		return
	}
	if boarding.Status != models.BoardingActive {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Only ACTIVE listings can be deactivated", ctx)
		return
	}

	if err := storage.DB.Model(boarding).Update("status", models.BoardingInactive).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"boarding": boarding})
}

func ActivateBoarding(ctx iris.Context) {
	ownerID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().GetUintDefault("id", 0)

	boarding, ok := findOwnedBoarding(ctx, id, ownerID)
	if !ok {
		return
	}
	if boarding.Status != models.BoardingInactive {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Only INACTIVE listings can be reactivated", ctx)
		return
	}

	if err := storage.DB.Model(boarding).Update("status", models.BoardingActive).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"boarding": boarding})
}
