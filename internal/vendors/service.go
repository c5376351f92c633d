package vendors

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
	pkgerrors "github.com/kaanagas/kaanagas-backend/pkg/errors"
	"github.com/kaanagas/kaanagas-backend/pkg/geo"
)

// Service exposes vendor onboarding, inventory and discovery operations.
type Service interface {
	RegisterVendor(ctx context.Context, input RegisterVendorInput) (*models.VendorProfile, error)
	UpdateVendor(ctx context.Context, vendorID uuid.UUID, input UpdateVendorInput) (*models.VendorProfile, error)
	GetVendor(ctx context.Context, vendorID uuid.UUID) (*models.VendorProfile, error)
	SetVendorStatus(ctx context.Context, vendorID uuid.UUID, status string) error
	ListVendors(ctx context.Context) ([]models.VendorProfile, error)
	FindNearbyVendors(ctx context.Context, params NearbyParams) ([]NearbyVendor, error)

	SetInventory(ctx context.Context, vendorID uuid.UUID, input SetInventoryInput) (*models.VendorInventory, error)
	ListInventory(ctx context.Context, vendorID uuid.UUID) ([]models.VendorInventory, error)
	ResolveUnitPrice(ctx context.Context, vendorID, productID uuid.UUID, isRefill bool) (decimal.Decimal, error)
}

type service struct {
	repo Repository
}

// NewService wires a vendors service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New("vendors: repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) RegisterVendor(ctx context.Context, input RegisterVendorInput) (*models.VendorProfile, error) {
	businessType, err := enums.ParseBusinessType(input.BusinessType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if input.BusinessName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business name is required")
	}
	if input.Address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}

	if existing, err := s.repo.FindProfileByUserID(ctx, input.UserID); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already has a vendor profile")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to check vendor profile")
	}

	profile := &models.VendorProfile{
		ID:                 uuid.New(),
		UserID:             input.UserID,
		BusinessName:       input.BusinessName,
		BusinessType:       businessType,
		RegistrationNumber: input.RegistrationNumber,
		Address:            input.Address,
		Latitude:           input.Latitude,
		Longitude:          input.Longitude,
		DeliveryRadiusKM:   input.DeliveryRadiusKM,
		MinimumOrderAmount: input.MinimumOrderAmount,
		DeliveryFee:        input.DeliveryFee,
		EstimatedTime:      input.EstimatedTime,
		Status:             enums.VendorStatusPending,
	}
	if profile.DeliveryRadiusKM <= 0 {
		profile.DeliveryRadiusKM = 10
	}
	if profile.EstimatedTime <= 0 {
		profile.EstimatedTime = 30
	}

	created, err := s.repo.CreateProfile(ctx, profile)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create vendor profile")
	}
	return created, nil
}

func (s *service) UpdateVendor(ctx context.Context, vendorID uuid.UUID, input UpdateVendorInput) (*models.VendorProfile, error) {
	if _, err := s.GetVendor(ctx, vendorID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.BusinessName != nil {
		updates["business_name"] = *input.BusinessName
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.Latitude != nil {
		updates["latitude"] = *input.Latitude
	}
	if input.Longitude != nil {
		updates["longitude"] = *input.Longitude
	}
	if input.DeliveryRadiusKM != nil {
		if *input.DeliveryRadiusKM <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery radius must be positive")
		}
		updates["delivery_radius_km"] = *input.DeliveryRadiusKM
	}
	if input.MinimumOrderAmount != nil {
		if input.MinimumOrderAmount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum order amount cannot be negative")
		}
		updates["minimum_order_amount"] = *input.MinimumOrderAmount
	}
	if input.DeliveryFee != nil {
		if input.DeliveryFee.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery fee cannot be negative")
		}
		updates["delivery_fee"] = *input.DeliveryFee
	}
	if input.EstimatedTime != nil {
		updates["estimated_time"] = *input.EstimatedTime
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.UpdateProfile(ctx, vendorID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update vendor profile")
	}
	return s.GetVendor(ctx, vendorID)
}

func (s *service) GetVendor(ctx context.Context, vendorID uuid.UUID) (*models.VendorProfile, error) {
	profile, err := s.repo.FindProfileByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load vendor profile")
	}
	return profile, nil
}

func (s *service) SetVendorStatus(ctx context.Context, vendorID uuid.UUID, status string) error {
	parsed, err := enums.ParseVendorStatus(status)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if _, err := s.GetVendor(ctx, vendorID); err != nil {
		return err
	}
	if err := s.repo.UpdateProfile(ctx, vendorID, map[string]any{"status": parsed}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update vendor status")
	}
	return nil
}

func (s *service) ListVendors(ctx context.Context) ([]models.VendorProfile, error) {
	profiles, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendors")
	}
	return profiles, nil
}

// FindNearbyVendors returns active vendors that deliver to the given
// point, closest first. With a product filter, only vendors holding
// sellable stock of that product are returned.
func (s *service) FindNearbyVendors(ctx context.Context, params NearbyParams) ([]NearbyVendor, error) {
	profiles, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list vendors")
	}

	var stocked map[uuid.UUID]bool
	if params.ProductID != nil {
		items, err := s.repo.ListVendorsWithProduct(ctx, *params.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list vendor stock")
		}
		stocked = make(map[uuid.UUID]bool, len(items))
		for _, item := range items {
			stocked[item.VendorID] = true
		}
	}

	results := make([]NearbyVendor, 0, len(profiles))
	for i := range profiles {
		profile := profiles[i]
		if stocked != nil && !stocked[profile.ID] {
			continue
		}
		distance := geo.DistanceKM(params.Latitude, params.Longitude, profile.Latitude, profile.Longitude)
		if distance > profile.DeliveryRadiusKM {
			continue
		}
		results = append(results, NearbyVendor{Profile: profile, DistanceKM: distance})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKM < results[j].DistanceKM
	})
	return results, nil
}

func (s *service) SetInventory(ctx context.Context, vendorID uuid.UUID, input SetInventoryInput) (*models.VendorInventory, error) {
	if input.CurrentStock < 0 || input.MinimumStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock levels cannot be negative")
	}
	if input.SellingPrice.IsNegative() || input.RefillPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}
	if _, err := s.GetVendor(ctx, vendorID); err != nil {
		return nil, err
	}

	item := &models.VendorInventory{
		ID:           uuid.New(),
		VendorID:     vendorID,
		ProductID:    input.ProductID,
		CurrentStock: input.CurrentStock,
		MinimumStock: input.MinimumStock,
		SellingPrice: input.SellingPrice,
		RefillPrice:  input.RefillPrice,
		IsAvailable:  input.IsAvailable,
	}
	saved, err := s.repo.UpsertInventory(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to save inventory")
	}
	return saved, nil
}

func (s *service) ListInventory(ctx context.Context, vendorID uuid.UUID) ([]models.VendorInventory, error) {
	if _, err := s.GetVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListInventory(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list inventory")
	}
	return items, nil
}

// ResolveUnitPrice returns the vendor's price for one unit. Refill
// pricing requires a vendor whose business type serves refills.
func (s *service) ResolveUnitPrice(ctx context.Context, vendorID, productID uuid.UUID, isRefill bool) (decimal.Decimal, error) {
	item, err := s.repo.FindInventory(ctx, vendorID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "vendor does not stock this product")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load inventory")
	}
	if !item.IsAvailable {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeConflict, "product is not available from this vendor")
	}
	if !isRefill {
		return item.SellingPrice, nil
	}

	vendor, err := s.GetVendor(ctx, vendorID)
	if err != nil {
		return decimal.Zero, err
	}
	if !vendor.BusinessType.SellsRefills() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "vendor does not offer refills")
	}
	return item.RefillPrice, nil
}

// RegisterVendorInput carries the fields for vendor onboarding.
type RegisterVendorInput struct {
	UserID             uuid.UUID
	BusinessName       string
	BusinessType       string
	RegistrationNumber *string
	Address            string
	Latitude           float64
	Longitude          float64
	DeliveryRadiusKM   float64
	MinimumOrderAmount decimal.Decimal
	DeliveryFee        decimal.Decimal
	EstimatedTime      int
}

// UpdateVendorInput carries optional profile updates.
type UpdateVendorInput struct {
	BusinessName       *string
	Address            *string
	Latitude           *float64
	Longitude          *float64
	DeliveryRadiusKM   *float64
	MinimumOrderAmount *decimal.Decimal
	DeliveryFee        *decimal.Decimal
	EstimatedTime      *int
}

// SetInventoryInput sets a vendor's stock and pricing for one product.
type SetInventoryInput struct {
	ProductID    uuid.UUID
	CurrentStock int
	MinimumStock int
	SellingPrice decimal.Decimal
	RefillPrice  decimal.Decimal
	IsAvailable  bool
}

// NearbyParams filters vendor discovery.
type NearbyParams struct {
	Latitude  float64
	Longitude float64
	ProductID *uuid.UUID
}

// NearbyVendor pairs a vendor with its distance from the caller.
type NearbyVendor struct {
	Profile    models.VendorProfile `json:"profile"`
	DistanceKM float64              `json:"distanceKm"`
}
